package export

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
)

// Progress counts finished pixels of a running export. It is safe for
// concurrent use.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64
}

func (p *Progress) start(total int) {
	if p == nil {
		return
	}
	p.done.Store(0)
	p.total.Store(int64(total))
}

func (p *Progress) add(n int) {
	if p == nil {
		return
	}
	p.done.Add(int64(n))
}

func (p *Progress) finish() {
	if p == nil {
		return
	}
	p.done.Store(p.total.Load())
}

// Fraction returns the finished share in [0,1].
func (p *Progress) Fraction() float64 {
	total := p.total.Load()
	if total <= 0 {
		return 0
	}
	return float64(p.done.Load()) / float64(total)
}

// AntiAlias9x samples 9 positions for each sampled position,
// returning the average colour.
//
// antialias is the number of device pixels between sampled positions.
func AntiAlias9x(img programs.Image, antialias float64) programs.Image {
	if antialias == 0 {
		logger.Logger().Warn("image uselessly antialiased with distance of 0")
	}
	return &antialias9xImage{
		Image:  img,
		offset: antialias,
	}
}

type antialias9xImage struct {
	programs.Image
	offset float64
}

func (i *antialias9xImage) GetPixel(pos mgl64.Vec2) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, dx := range [3]float64{-i.offset, 0, i.offset} {
		for _, dy := range [3]float64{-i.offset, 0, i.offset} {
			sum = sum.Add(i.Image.GetPixel(mgl64.Vec2{pos[0] + dx, pos[1] + dy}))
		}
	}
	return sum.Mul(1 / float32(9))
}

const chunkSize = 50

// buffer samples img at pixel centres into an RGBA image, one goroutine per
// chunk of columns.
func buffer(ctx context.Context, img programs.Image, progress *Progress) (*image.RGBA, error) {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	progress.start(b.Dx() * b.Dy())

	var wg sync.WaitGroup
	for chunkMin := b.Min.X; chunkMin < b.Max.X; chunkMin += chunkSize {
		chunkMax := min(chunkMin+chunkSize, b.Max.X)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := chunkMin; x < chunkMax; x++ {
				if ctx.Err() != nil {
					return
				}

				for y := b.Min.Y; y < b.Max.Y; y++ {
					c := img.GetPixel(mgl64.Vec2{float64(x) + 0.5, float64(y) + 0.5})
					i := out.PixOffset(x-b.Min.X, y-b.Min.Y)
					out.Pix[i+0] = channel(c[0])
					out.Pix[i+1] = channel(c[1])
					out.Pix[i+2] = channel(c[2])
					out.Pix[i+3] = 0xff
				}
				progress.add(b.Dy())
			}
		}()
	}

	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func channel(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
