package focus

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// bboxFilter estimates box state across frames
type bboxFilter interface {
	Predict()
	Update(zCx, zCy, zW, zH float64) error
	GetState() (float64, float64, float64, float64)
}

// track is an object followed across frames.
// Kalman filter state is [cx, cy, w, h, vx, vy, vw, vh].
type track struct {
	// Internal identifier, shows up in logs and errors
	id uuid.UUID
	// Public tracking identifier handed out to candidates
	number        int
	bbox          Rectangle
	predictedBBox Rectangle
	noMatchTimes  int
	kf            bboxFilter
}

func newTrack(bbox Rectangle, number int, dt float64) *track {
	center := bbox.Center()

	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	kf := kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, bbox.Width, bbox.Height),
	)
	return &track{
		id:            uuid.New(),
		number:        number,
		bbox:          bbox,
		predictedBBox: bbox,
		kf:            kf,
	}
}

// predict executes Kalman filter prediction step
func (tr *track) predict() {
	tr.kf.Predict()
	cx, cy, w, h := tr.kf.GetState()
	tr.predictedBBox = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
}

// update corrects the track with a new measurement
func (tr *track) update(measurement Rectangle) error {
	center := measurement.Center()
	err := tr.kf.Update(center.X, center.Y, measurement.Width, measurement.Height)
	if err != nil {
		return errors.Wrapf(err, "Can't update track %s", tr.id)
	}
	cx, cy, w, h := tr.kf.GetState()
	tr.bbox = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
	tr.noMatchTimes = 0
	return nil
}

// matchScore combines IoU with predicted box and center distance into [0, 1].
// Pure distance matching is weighted down for boxes which do not overlap.
func (tr *track) matchScore(bbox Rectangle) float64 {
	iouValue := IoU(bbox, tr.predictedBBox)
	distance := euclideanDistance(tr.predictedBBox.Center(), bbox.Center())
	distanceScore := 1.0 / (1.0 + distance*0.01)
	if iouValue > 0.05 {
		return iouValue*0.8 + distanceScore*0.2
	}
	return distanceScore * 0.5
}
