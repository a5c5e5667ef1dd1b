package gaze

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// FaceExtractor turns webcam frames into gaze feature vectors using
// OpenCV's FaceDetectorYN (YuNet).
//
// The feature vector is the five YuNet landmarks (eyes, nose, mouth
// corners) expressed relative to the face box, plus the normalized box
// size: 12 values total. Blinks are read from eye-patch contrast - a
// closed eye is a near-uniform skin patch with low intensity deviation.
type FaceExtractor struct {
	detector    gocv.FaceDetectorYN
	blinkThresh float64
	mu          sync.Mutex // Protects inference
}

// NewFaceExtractor creates a YuNet-backed extractor.
func NewFaceExtractor(cfg Config) (*FaceExtractor, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &FaceExtractor{
		detector:    detector,
		blinkThresh: cfg.BlinkThresh,
	}, nil
}

// Extract finds the most confident face in the encoded image and returns
// its feature vector and blink flag. Features is nil when no face passes
// the confidence threshold.
func (x *FaceExtractor) Extract(frame []byte) (Features, bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, false, fmt.Errorf("empty image")
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	x.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	x.detector.Detect(img, &faces)

	// YuNet output format (15 columns):
	// 0-3: x, y, w, h (bounding box in pixels)
	// 4-13: 5 facial landmarks (x,y pairs): right eye, left eye,
	//       nose tip, right mouth corner, left mouth corner
	// 14: face score
	best := -1
	bestScore := 0.0
	for r := 0; r < faces.Rows(); r++ {
		if score := float64(faces.GetFloatAt(r, 14)); score > bestScore {
			best = r
			bestScore = score
		}
	}
	if best < 0 {
		return nil, false, nil
	}

	fx := float64(faces.GetFloatAt(best, 0))
	fy := float64(faces.GetFloatAt(best, 1))
	fw := float64(faces.GetFloatAt(best, 2))
	fh := float64(faces.GetFloatAt(best, 3))
	if fw <= 0 || fh <= 0 {
		return nil, false, nil
	}

	features := make(Features, 0, 12)
	for lm := 0; lm < 5; lm++ {
		lx := float64(faces.GetFloatAt(best, 4+lm*2))
		ly := float64(faces.GetFloatAt(best, 5+lm*2))
		features = append(features, (lx-fx)/fw, (ly-fy)/fh)
	}
	features = append(features, fw/imgW, fh/imgH)

	rightEye := image.Pt(int(faces.GetFloatAt(best, 4)), int(faces.GetFloatAt(best, 5)))
	leftEye := image.Pt(int(faces.GetFloatAt(best, 6)), int(faces.GetFloatAt(best, 7)))
	patch := int(fw * 0.12)
	blink := x.eyeClosed(img, rightEye, patch) && x.eyeClosed(img, leftEye, patch)

	return features, blink, nil
}

// eyeClosed samples a patch around an eye landmark and reports whether its
// gray-level deviation falls below the blink threshold.
func (x *FaceExtractor) eyeClosed(img gocv.Mat, eye image.Point, patch int) bool {
	if patch < 2 {
		return false
	}
	rect := image.Rect(eye.X-patch, eye.Y-patch, eye.X+patch, eye.Y+patch)
	rect = rect.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if rect.Dx() < 2 || rect.Dy() < 2 {
		return false
	}

	region := img.Region(rect)
	defer region.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)

	mean := gocv.NewMat()
	stddev := gocv.NewMat()
	defer mean.Close()
	defer stddev.Close()
	gocv.MeanStdDev(gray, &mean, &stddev)

	return stddev.GetDoubleAt(0, 0) < x.blinkThresh
}

// Close releases the detector resources.
func (x *FaceExtractor) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.detector.Close()
	return nil
}
