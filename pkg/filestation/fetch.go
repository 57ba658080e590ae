package filestation

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// Fetch sends a request whose successful response is raw content, such as
// Download or Thumbnail. A JSON failure envelope is resolved like any other
// failure; everything else is returned as the content.
func Fetch(ctx context.Context, client dsm.Client, req *dsm.Request[[]byte]) ([]byte, error) {
	body, err := client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return content(body, req.ErrorTaxonomy())
}

func content(body []byte, taxonomy *dsm.Taxonomy) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return body, nil
	}

	envelope, err := dsm.ParseEnvelope(trimmed)
	if err != nil || envelope.Success || envelope.Error == nil {
		return body, nil
	}

	return nil, taxonomy.Err(envelope.Error.Code, envelope.Error.Errors...)
}
