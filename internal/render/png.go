package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

const (
	defaultSquareSize = 56
	labelMargin       = 24
	gridLine          = 2
)

var (
	backgroundColor = color.RGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}
	feltColor       = color.RGBA{R: 0x1f, G: 0x7a, B: 0x3d, A: 0xff}
	lineColor       = color.RGBA{R: 0x0f, G: 0x3d, B: 0x1e, A: 0xff}
	labelColor      = color.RGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}
	hintColor       = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x55}
	lastMoveColor   = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}
)

// discSVG is filled per colour. oksvg needs #rrggbb fills.
const discSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<circle cx="50" cy="53" r="40" fill="#000000" fill-opacity="0.35"/>
<circle cx="50" cy="50" r="40" fill="%s" stroke="%s" stroke-width="3"/>
<circle cx="42" cy="40" r="12" fill="#ffffff" fill-opacity="%s"/>
</svg>`

type discKey struct {
	cell othello.Cell
	size int
}

var (
	discCache   = map[discKey]image.Image{}
	discCacheMu sync.RWMutex
)

// PNGRenderer draws boards as PNG images.
type PNGRenderer struct {
	SquareSize int
}

// NewPNGRenderer returns a renderer with the default square size.
func NewPNGRenderer() *PNGRenderer { return &PNGRenderer{SquareSize: defaultSquareSize} }

// Render encodes the board to PNG bytes.
func (r *PNGRenderer) Render(b othello.Board, opts Options) ([]byte, error) {
	sq := r.SquareSize
	if sq <= 0 {
		sq = defaultSquareSize
	}
	boardPx := sq * othello.Size
	total := boardPx + 2*labelMargin
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	origin := image.Pt(labelMargin, labelMargin)
	boardRect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(boardPx, boardPx))}
	draw.Draw(img, boardRect, image.NewUniform(feltColor), image.Point{}, draw.Src)
	drawGrid(img, boardRect, sq)

	hints := hintSet(opts.Hints)
	for row := 0; row < othello.Size; row++ {
		for col := 0; col < othello.Size; col++ {
			cell := squareRect(row, col, sq, origin)
			switch c := b.At(row, col); c {
			case othello.CellBlack, othello.CellWhite:
				disc, err := discImage(c, sq)
				if err != nil {
					return nil, err
				}
				draw.Draw(img, cell, disc, image.Point{}, draw.Over)
			default:
				if hints[[2]int{row, col}] {
					fillCircle(img, centerOf(cell), sq/8, hintColor)
				}
			}
		}
	}
	if opts.HasLast {
		fillCircle(img, centerOf(squareRect(opts.Last.Row, opts.Last.Col, sq, origin)), sq/10, lastMoveColor)
	}
	drawLabels(img, boardRect, sq)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawGrid(img *image.RGBA, rect image.Rectangle, sq int) {
	line := image.NewUniform(lineColor)
	for i := 0; i <= othello.Size; i++ {
		off := i * sq
		v := image.Rect(rect.Min.X+off-gridLine/2, rect.Min.Y, rect.Min.X+off+gridLine/2, rect.Max.Y)
		h := image.Rect(rect.Min.X, rect.Min.Y+off-gridLine/2, rect.Max.X, rect.Min.Y+off+gridLine/2)
		draw.Draw(img, v.Intersect(img.Bounds()), line, image.Point{}, draw.Src)
		draw.Draw(img, h.Intersect(img.Bounds()), line, image.Point{}, draw.Src)
	}
}

func drawLabels(img *image.RGBA, rect image.Rectangle, sq int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(labelColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	for i := 0; i < othello.Size; i++ {
		center := rect.Min.X + i*sq + sq/2
		drawCentered(drawer, string(rune('a'+i)), center, rect.Min.Y-(labelMargin-ascent)/2)
		drawCentered(drawer, string(rune('a'+i)), center, rect.Max.Y+(labelMargin+ascent)/2)

		middle := rect.Min.Y + i*sq + sq/2 + ascent/2
		drawCentered(drawer, string(rune('1'+i)), rect.Min.X-labelMargin/2, middle)
		drawCentered(drawer, string(rune('1'+i)), rect.Max.X+labelMargin/2, middle)
	}
}

func drawCentered(d *font.Drawer, text string, centerX, baseline int) {
	width := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(centerX-width/2, baseline)
	d.DrawString(text)
}

func discImage(cell othello.Cell, size int) (image.Image, error) {
	key := discKey{cell: cell, size: size}
	discCacheMu.RLock()
	if img, ok := discCache[key]; ok {
		discCacheMu.RUnlock()
		return img, nil
	}
	discCacheMu.RUnlock()

	fill, stroke, shine := "#111111", "#000000", "0.25"
	if cell == othello.CellWhite {
		fill, stroke, shine = "#f5f5f5", "#9e9e9e", "0.6"
	}
	src := fmt.Sprintf(discSVG, fill, stroke, shine)
	icon, err := oksvg.ReadIconStream(bytes.NewReader([]byte(src)))
	if err != nil {
		return nil, fmt.Errorf("parse disc svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	discCacheMu.Lock()
	discCache[key] = img
	discCacheMu.Unlock()
	return img, nil
}

func squareRect(row, col, sq int, origin image.Point) image.Rectangle {
	x := origin.X + col*sq
	y := origin.Y + row*sq
	return image.Rect(x, y, x+sq, y+sq)
}

func centerOf(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func fillCircle(img *image.RGBA, c image.Point, radius int, clr color.Color) {
	src := image.NewUniform(clr)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			p := image.Pt(c.X+dx, c.Y+dy)
			if !p.In(img.Bounds()) {
				continue
			}
			draw.Draw(img, image.Rect(p.X, p.Y, p.X+1, p.Y+1), src, image.Point{}, draw.Over)
		}
	}
}
