package focus

// Transform maps a box from image space into view space for a preview that fills the view
// and crops the overflowing axis around the center. Each edge is clamped to the view.
// All dimensions must be positive.
func Transform(imageBox Rectangle, imageWidth, imageHeight, viewWidth, viewHeight int) ViewRect {
	iw := float64(imageWidth)
	ih := float64(imageHeight)
	vw := float64(viewWidth)
	vh := float64(viewHeight)

	var scale, offsetX, offsetY float64
	if iw/ih > vw/vh {
		// Image is wider: fit height, crop width
		scale = vh / ih
		offsetX = -(iw*scale - vw) / 2.0
	} else {
		// Image is taller or same aspect: fit width, crop height
		scale = vw / iw
		offsetY = -(ih*scale - vh) / 2.0
	}

	return ViewRect{
		Left:   clampFloat64(imageBox.Left()*scale+offsetX, 0, vw),
		Top:    clampFloat64(imageBox.Top()*scale+offsetY, 0, vh),
		Right:  clampFloat64(imageBox.Right()*scale+offsetX, 0, vw),
		Bottom: clampFloat64(imageBox.Bottom()*scale+offsetY, 0, vh),
	}
}
