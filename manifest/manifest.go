package manifest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/image_uris/imageuris"
)

// Retriever resolves retrieval parameters into an image
// URI. *imageuris.Catalog implements it.
type Retriever interface {
	Retrieve(p imageuris.Params) (string, error)
}

type imageTransformer struct {
	retriever Retriever
	defaults  Defaults
	resolved  map[string]string
}

// ResolveImages reads multi-document YAML from in,
// substitutes image-uri references using re, validates
// each document, and writes the result to out.
func ResolveImages(
	in io.Reader,
	out io.Writer,
	re Retriever,
	defaults Defaults,
) error {
	const errCtx = "resolving manifest images"

	it := imageTransformer{
		retriever: re,
		defaults:  defaults,
		resolved:  make(map[string]string),
	}
	decoder := yaml.NewDecoder(in)
	dw := docWriter{w: out}

	for {
		var obj map[string]any

		err := decoder.Decode(&obj)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf(
				"%s: decoding yaml: %w", errCtx, err,
			)
		}

		if obj == nil {
			continue
		}

		if err := it.resolveDocument(obj); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		if err := dw.write(obj); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	slog.Debug(
		"manifest images resolved",
		"documents", dw.count,
		"references", len(it.resolved),
	)

	return nil
}

// resolveDocument checks that doc is an identifiable
// object and resolves its image references in place.
func (it *imageTransformer) resolveDocument(
	doc map[string]any,
) error {
	name := extractName(doc)
	if name == "" {
		return fmt.Errorf("missing metadata.name in object %v", doc)
	}

	kind := extractKind(doc)
	if kind == "" {
		return fmt.Errorf("missing kind in object %v", doc)
	}

	if err := it.findAndReplaceImage(doc); err != nil {
		return fmt.Errorf("%s/%s: %w", kind, name, err)
	}

	return nil
}

// docWriter emits YAML documents separated by "---".
type docWriter struct {
	w     io.Writer
	count int
}

func (dw *docWriter) write(doc map[string]any) error {
	buf, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling object: %w", err)
	}

	if dw.count > 0 {
		if _, err := io.WriteString(dw.w, "---\n"); err != nil {
			return fmt.Errorf("writing separator: %w", err)
		}
	}

	if _, err := dw.w.Write(buf); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	dw.count++

	return nil
}

// extractName retrieves metadata.name from a YAML object
// represented as a nested map.
func extractName(
	obj map[string]any,
) string {
	metadata, ok := obj["metadata"].(map[string]any)
	if !ok {
		return ""
	}

	name, ok := metadata["name"].(string)
	if !ok {
		return ""
	}

	return name
}

// extractKind retrieves the kind field from a YAML object.
func extractKind(
	obj map[string]any,
) string {
	kind, ok := obj["kind"].(string)
	if !ok {
		return ""
	}

	return kind
}

// findAndReplaceImage updates container-like entries of
// obj. When obj holds none of the known keys the walk
// descends into every nested map and list.
func (it *imageTransformer) findAndReplaceImage(
	obj map[string]any,
) error {
	found := false

	for _, pa := range []string{"container", "spec"} {
		if _, ok := obj[pa]; ok {
			found = true

			if err := it.updateContainer(obj, pa); err != nil {
				return err
			}
		}
	}

	for _, pa := range []string{"containers", "initContainers"} {
		if _, ok := obj[pa]; ok {
			found = true

			if err := it.updateContainers(obj, pa); err != nil {
				return err
			}
		}
	}

	if !found {
		return it.findContainers(obj)
	}

	// spec usually nests the containers further down.
	if spec, ok := obj["spec"].(map[string]any); ok {
		return it.findAndReplaceImage(spec)
	}

	return nil
}

func (it *imageTransformer) updateContainers(
	obj map[string]any,
	path string,
) error {
	containers, ok := obj[path].([]any)
	if !ok {
		return nil
	}

	for idx := range containers {
		container, ok := containers[idx].(map[string]any)
		if !ok {
			continue
		}

		if err := it.replaceImage(container); err != nil {
			return err
		}
	}

	return nil
}

func (it *imageTransformer) updateContainer(
	obj map[string]any,
	path string,
) error {
	container, ok := obj[path].(map[string]any)
	if !ok {
		return nil
	}

	return it.replaceImage(container)
}

// replaceImage resolves the image field of container
// when it holds an image-uri reference.
func (it *imageTransformer) replaceImage(
	container map[string]any,
) error {
	image, ok := container["image"].(string)
	if !ok || !IsReference(image) {
		return nil
	}

	if uri, ok := it.resolved[image]; ok {
		container["image"] = uri

		return nil
	}

	params, err := ParseReference(image, it.defaults)
	if err != nil {
		return fmt.Errorf(
			"unresolved image found: %s: %w", image, err,
		)
	}

	uri, err := it.retriever.Retrieve(params)
	if err != nil {
		return fmt.Errorf(
			"unresolved image found: %s: %w", image, err,
		)
	}

	it.resolved[image] = uri
	container["image"] = uri

	return nil
}

func (it *imageTransformer) findContainers(
	obj map[string]any,
) error {
	for key := range obj {
		switch typedVal := obj[key].(type) {
		case map[string]any:
			if err := it.findAndReplaceImage(
				typedVal,
			); err != nil {
				return err
			}
		case []any:
			for idx := range typedVal {
				item, ok := typedVal[idx].(map[string]any)
				if ok {
					if err := it.findAndReplaceImage(
						item,
					); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}
