package planner

import "github.com/pkg/errors"

// SamplingWidth is the drivable lateral band of one lane option: the offset of the
// option's centerline from the reference path, and non-negative extents to its left
// and right within which terminal offsets may be sampled. Extents are already
// narrowed by the vehicle half-width and the configured margin.
type SamplingWidth struct {
	Center float64
	Left   float64
	Right  float64
}

// SamplingWidthForLane computes the sampling band for a lane option given the
// vehicle width, a lateral margin, and the widths of the current, left, and right
// lanes. Extents are clipped to be non-negative; a lane option narrower than the
// vehicle plus margins is unavailable.
func SamplingWidthForLane(laneID int, vehicleWidth, margin, currentWidth, leftWidth, rightWidth float64) (SamplingWidth, error) {
	half := vehicleWidth/2 + margin
	switch laneID {
	case LaneKeep:
		if currentWidth < 2*half {
			return SamplingWidth{}, errors.Wrapf(ErrLaneUnavailable, "current lane %.2fm wide, vehicle needs %.2fm", currentWidth, 2*half)
		}
		extent := currentWidth/2 - half
		return SamplingWidth{Center: 0, Left: extent, Right: extent}, nil
	case LaneLeft:
		if leftWidth < 2*half {
			return SamplingWidth{}, errors.Wrapf(ErrLaneUnavailable, "left lane %.2fm wide, vehicle needs %.2fm", leftWidth, 2*half)
		}
		extent := leftWidth/2 - half
		return SamplingWidth{Center: currentWidth/2 + leftWidth/2, Left: extent, Right: extent}, nil
	case LaneRight:
		if rightWidth < 2*half {
			return SamplingWidth{}, errors.Wrapf(ErrLaneUnavailable, "right lane %.2fm wide, vehicle needs %.2fm", rightWidth, 2*half)
		}
		extent := rightWidth/2 - half
		return SamplingWidth{Center: -(currentWidth/2 + rightWidth/2), Left: extent, Right: extent}, nil
	default:
		return SamplingWidth{}, errors.Errorf("unknown lane option %d", laneID)
	}
}
