// Package canvas fits images onto fixed-size transparent canvases.
//
// The transform resizes the source to fit within the target dimensions while
// preserving its aspect ratio, then centers it on a fully transparent canvas of
// exactly the target size (letterbox or pillarbox padding).
//
// # Basic Usage
//
//	img, err := canvas.Decode(data)
//	if err != nil {
//		return err // *canvas.DecodeError
//	}
//
//	out := canvas.Fit(img, canvas.Spec{Width: 400, Height: 400})
//
//	var buf bytes.Buffer
//	if err := canvas.EncodePNG(&buf, out); err != nil {
//		return err
//	}
//
// # Centering
//
// Offsets use floor division. When the padding along an axis is odd, the
// extra pixel goes to the right or bottom edge, never the left or top.
//
// # Formats
//
// Decode accepts PNG, JPEG, GIF (first frame only), BMP, TIFF and WebP and
// applies EXIF orientation. Fit always returns an RGBA image so the output
// carries an alpha channel even for opaque sources. Content is composited
// with the Porter-Duff over operator, so partially transparent source pixels
// blend with the transparent background instead of overwriting it.
package canvas
