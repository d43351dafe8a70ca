package imageproc

import (
	"bytes"
	"errors"
	"image"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
)

// Limits — ограничения внешнего сервиса на размер фото.
type Limits struct {
	MaxBytes  int
	MaxWidth  int
	MaxHeight int
	Quality   int
}

var (
	// VisionLimits — для vision-моделей (длинная сторона до 2048px).
	VisionLimits = Limits{MaxBytes: 4 << 20, MaxWidth: 2048, MaxHeight: 2048, Quality: 85}
	// LegacyLimits — копия для хранилища фото, как раньше (1920x1080).
	LegacyLimits = Limits{MaxBytes: 4 << 20, MaxWidth: 1920, MaxHeight: 1080, Quality: 85}
)

const (
	minQuality   = 40
	qualityStep  = 10
	shrinkFactor = 0.8
)

var ErrVariantUnavailable = errors.New("imageproc: variant not applicable")

// Normalize приводит фото к лимитам. Если байты уже укладываются в MaxBytes — возвращает вход как есть.
// Ошибка декодирования не фатальна: возвращаются исходные байты. Так же, если фото не
// уложилось в MaxBytes даже при минимальном размере: результат либо в лимите, либо исходник.
func Normalize(img []byte, lim Limits) []byte {
	if len(img) <= lim.MaxBytes {
		return img
	}
	src, err := decode(img)
	if err != nil {
		log.WithField("bytes", len(img)).Warnf("normalize: decode failed, keep original: %v", err)
		return img
	}

	fitted := image.Image(imaging.Fit(src, lim.MaxWidth, lim.MaxHeight, imaging.Lanczos))
	q := lim.Quality
	for {
		out, err := encodeJPEG(fitted, q)
		if err != nil {
			log.Warnf("normalize: encode failed, keep original: %v", err)
			return img
		}
		if len(out) <= lim.MaxBytes {
			log.WithFields(log.Fields{
				"from": len(img), "to": len(out), "quality": q,
				"w": fitted.Bounds().Dx(), "h": fitted.Bounds().Dy(),
			}).Debug("normalize: done")
			return out
		}
		if q > minQuality {
			q = max(q-qualityStep, minQuality)
			continue
		}
		b := fitted.Bounds()
		w, h := int(float64(b.Dx())*shrinkFactor), int(float64(b.Dy())*shrinkFactor)
		if w < 16 || h < 16 {
			log.WithFields(log.Fields{"from": len(img), "min": len(out), "limit": lim.MaxBytes}).
				Warn("normalize: cannot fit the limit, keep original")
			return img
		}
		fitted = imaging.Resize(fitted, w, h, imaging.Lanczos)
	}
}

// Rescale приводит длинную сторону к target, если отличие больше tolerance.
// ok=false — масштабирование не требуется.
func Rescale(img []byte, target, tolerance int) ([]byte, bool, error) {
	src, err := decode(img)
	if err != nil {
		return nil, false, err
	}
	b := src.Bounds()
	longest := max(b.Dx(), b.Dy())
	diff := longest - target
	if diff < 0 {
		diff = -diff
	}
	if diff <= tolerance {
		return nil, false, nil
	}
	var dst image.Image
	if b.Dx() >= b.Dy() {
		dst = imaging.Resize(src, target, 0, imaging.Lanczos)
	} else {
		dst = imaging.Resize(src, 0, target, imaging.Lanczos)
	}
	out, err := encodeJPEG(dst, 90)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Dimensions возвращает ширину и высоту без учёта EXIF-ориентации.
func Dimensions(img []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func decode(img []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(img), imaging.AutoOrientation(true))
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
