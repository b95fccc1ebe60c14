// Package geometry renders compiled models as C source: texture arrays
// converted from image files followed by the model's display lists.
package geometry

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/level"
	"github.com/Faultbox/z64scene/pkg/scene"
)

// wordsPerLine is the number of u64 texture words per initializer line.
const wordsPerLine = 4

// Provider is the default geometry provider. Each texture symbol is
// emitted once per Provider, so use one Provider per export.
type Provider struct {
	log     *zap.Logger
	emitted map[string]bool
}

// NewProvider creates a Provider. A nil logger discards output.
func NewProvider(log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{log: log, emitted: make(map[string]bool)}
}

var _ level.GeometryProvider = (*Provider)(nil)

// ToCommands renders the textures and display lists of a model.
func (p *Provider) ToCommands(model scene.Model, settings level.GeometrySettings) (cdata.CData, error) {
	var out cdata.CData
	for _, tex := range model.Textures {
		if p.emitted[tex.Name] {
			continue
		}
		c, err := p.texture(tex, settings)
		if err != nil {
			return cdata.CData{}, err
		}
		p.emitted[tex.Name] = true
		out.Append(c)
	}

	for _, dl := range model.DisplayLists {
		if dl.Name == "" {
			return cdata.CData{}, errs.Reference("model %s has an unnamed display list", model.Name)
		}
		arr := cdata.NewUnsizedArray("Gfx", dl.Name)
		for _, cmd := range dl.Commands {
			arr.Add("%s", cmd)
		}
		out.Append(arr.CData())
	}
	return out, nil
}

func (p *Provider) texture(tex scene.Texture, settings level.GeometrySettings) (cdata.CData, error) {
	if tex.Name == "" {
		return cdata.CData{}, errs.Reference("texture %s has no symbol name", tex.Path)
	}
	if tex.Path == "" {
		return cdata.CData{}, errs.Reference("texture %s has no image", tex.Name)
	}

	format := tex.Format
	if format == "" {
		format = settings.TextureFormat
	}
	if format == "" {
		format = DefaultFormat
	}

	img, err := LoadImage(tex.Path)
	if err != nil {
		return cdata.CData{}, fmt.Errorf("%w: %v", errs.ErrReference, err)
	}
	data, err := Encode(img, format)
	if err != nil {
		return cdata.CData{}, fmt.Errorf("texture %s: %w", tex.Name, err)
	}
	words := Words(data)

	arr := cdata.NewUnsizedArray("u64", tex.Name)
	for i := 0; i < len(words); i += wordsPerLine {
		end := min(i+wordsPerLine, len(words))
		parts := make([]string, 0, end-i)
		for _, w := range words[i:end] {
			parts = append(parts, fmt.Sprintf("0x%016X", w))
		}
		arr.Add("%s", strings.Join(parts, ", "))
	}

	p.log.Debug("Texture converted",
		zap.String("name", tex.Name),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return arr.CData(), nil
}
