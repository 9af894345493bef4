// Package manifest walks multi-document Kubernetes YAML looking for container
// images written as image-uri references and substitutes them with registry
// URIs resolved from the image catalog. Documents are re-emitted separated by
// "---" markers.
package manifest
