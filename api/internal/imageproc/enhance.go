package imageproc

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// ядро EDGE_ENHANCE, нормируется на сумму (2)
var edgeEnhance = [9]float64{
	-1, -1, -1,
	-1, 10, -1,
	-1, -1, -1,
}

// Enhance — вариант для плохого освещения: контраст, резкость, яркость, подчёркивание краёв.
// Ошибка означает, что варианта нет; подставлять оригинал вызывающий не должен.
func Enhance(img []byte) ([]byte, error) {
	src, err := decode(img)
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	dst := imaging.AdjustContrast(src, 30)
	dst = imaging.Sharpen(dst, 1.5)
	dst = imaging.AdjustBrightness(dst, 10)
	dst = imaging.Convolve3x3(dst, edgeEnhance, &imaging.ConvolveOptions{Normalize: true})

	out, err := encodeJPEG(dst, 95)
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	return out, nil
}
