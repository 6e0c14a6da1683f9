package layout

import "image"

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// clampSize limits (w,h) to [0, rect size].
func clampSize(rect image.Rectangle, widthPx, heightPx int) (int, int) {
	widthPx = max(0, min(widthPx, rect.Dx()))
	heightPx = max(0, min(heightPx, rect.Dy()))
	return widthPx, heightPx
}

// AnchorBottomLeft returns a rectangle of size (widthPx,heightPx) placed in the bottom-left of rect.
func AnchorBottomLeft(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	widthPx, heightPx = clampSize(rect, widthPx, heightPx)
	return image.Rect(rect.Min.X, rect.Max.Y-heightPx, rect.Min.X+widthPx, rect.Max.Y)
}

// AnchorBottomRight returns a rectangle of size (widthPx,heightPx) placed in the bottom-right of rect.
func AnchorBottomRight(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	widthPx, heightPx = clampSize(rect, widthPx, heightPx)
	return image.Rect(rect.Max.X-widthPx, rect.Max.Y-heightPx, rect.Max.X, rect.Max.Y)
}

// FitAspect returns the largest rectangle with the aspect ratio of src that
// fits into rect, centred.
func FitAspect(rect image.Rectangle, src image.Rectangle) image.Rectangle {
	rect = Normalize(rect)
	src = Normalize(src)
	if src.Dx() == 0 || src.Dy() == 0 {
		return image.Rectangle{Min: rect.Min, Max: rect.Min}
	}
	w := rect.Dx()
	h := w * src.Dy() / src.Dx()
	if h > rect.Dy() {
		h = rect.Dy()
		w = h * src.Dx() / src.Dy()
	}
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
