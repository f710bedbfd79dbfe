package parser

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ExtractPages opens a PDF file and returns the decompressed content stream
// of every page together with the ToUnicode maps of the fonts it uses.
// Pages without a Contents entry are returned with empty Content.
func ExtractPages(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	pages := make([]Page, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page %d dict: %w", i, err)
		}
		page := Page{Number: i}

		if obj, found := pageDict.Find("Contents"); found {
			page.Content, err = resolveContentStream(ctx, obj)
			if err != nil {
				return nil, fmt.Errorf("page %d content stream: %w", i, err)
			}
		}

		page.Fonts, err = pageFonts(ctx, pageDict)
		if err != nil {
			return nil, fmt.Errorf("page %d fonts: %w", i, err)
		}

		pages = append(pages, page)
	}

	return pages, nil
}

// resolveContentStream dereferences and decompresses a Contents entry, which
// may be a single stream or an array of streams.
func resolveContentStream(ctx *model.Context, obj types.Object) ([]byte, error) {
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case types.StreamDict:
		if err := v.Decode(); err != nil {
			return nil, fmt.Errorf("decode stream: %w", err)
		}
		return v.Content, nil

	case types.Array:
		var buf bytes.Buffer
		for _, item := range v {
			data, err := resolveContentStream(ctx, item)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unexpected Contents type: %T", obj)
	}
}

// pageFonts returns the ToUnicode CMap for each font resource of the page
// that carries one, keyed by resource name.
func pageFonts(ctx *model.Context, pageDict types.Dict) (map[string]CMap, error) {
	res, err := findDict(ctx, pageDict, "Resources")
	if err != nil || res == nil {
		return nil, err
	}
	fontRes, err := findDict(ctx, res, "Font")
	if err != nil || fontRes == nil {
		return nil, err
	}

	fonts := make(map[string]CMap)
	for name, ref := range fontRes {
		obj, err := ctx.Dereference(ref)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", name, err)
		}
		font, ok := obj.(types.Dict)
		if !ok {
			continue
		}
		tu, found := font.Find("ToUnicode")
		if !found {
			continue
		}
		obj, err = ctx.Dereference(tu)
		if err != nil {
			return nil, fmt.Errorf("font %s ToUnicode: %w", name, err)
		}
		sd, ok := obj.(types.StreamDict)
		if !ok {
			continue
		}
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("font %s ToUnicode: %w", name, err)
		}
		fonts[name] = ParseCMap(sd.Content)
	}
	return fonts, nil
}

// findDict dereferences d[key] and returns it when it is a dictionary.
func findDict(ctx *model.Context, d types.Dict, key string) (types.Dict, error) {
	obj, found := d.Find(key)
	if !found {
		return nil, nil
	}
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	dict, _ := obj.(types.Dict)
	return dict, nil
}
