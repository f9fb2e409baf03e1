package pipeline

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/render"
	"github.com/matzehuels/cladding/pkg/render/sink"
)

// RenderFromLayout generates output artifacts in the requested formats.
func RenderFromLayout(res *layout.Result, opts Options) (map[string][]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("render: nil layout")
	}
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatSVG:
			data = sink.RenderSVG(res, svgOpts...)
		case render.FormatPNG:
			var buf bytes.Buffer
			err = sink.RenderPNG(res, &buf, svgOpts...)
			data = buf.Bytes()
		case render.FormatJSON:
			var jsonOpts []sink.JSONOption
			if opts.Region != "" {
				jsonOpts = append(jsonOpts, sink.WithJSONRegion(opts.Region))
			}
			data, err = sink.RenderJSON(res, jsonOpts...)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithWidth(opts.Width)}
	if opts.Region != "" {
		svgOpts = append(svgOpts, sink.WithRegion(opts.Region))
	}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	return svgOpts
}
