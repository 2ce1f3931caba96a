package report

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"Petronorm/internal/calc/cipw"
	"Petronorm/internal/chem"
)

func engine(t *testing.T) *cipw.Engine {
	t.Helper()
	e, err := cipw.NewEngine(chem.NewReference())
	require.NoError(t, err)
	return e
}

func jsonEncode(w io.Writer, v any) error { return json.NewEncoder(w).Encode(v) }
