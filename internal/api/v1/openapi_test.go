package apiv1

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The published document must stay valid and in sync with the routes
// attached by RegisterHandlers.
func TestOpenAPIDocumentMatchesRoutes(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	expected := []string{
		"/ping",
		"/packs",
		"/packs/{slug}",
		"/checkout/status/{session_id}",
	}
	for _, path := range expected {
		item := doc.Paths.Find(path)
		require.NotNilf(t, item, "path %s missing from document", path)
		assert.NotNilf(t, item.Get, "path %s must define GET", path)
	}

	assert.Len(t, doc.Paths.Map(), len(expected), "document defines paths without a registered handler")
}
