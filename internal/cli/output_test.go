package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/maskctl/internal/domain"
)

func newTestOutput(jsonMode bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewOutputTo(jsonMode, &out, &errOut), &out, &errOut
}

func TestOutput_Table(t *testing.T) {
	o, out, _ := newTestOutput(false)

	o.Print([]string{"ID", "NAME"}, [][]string{{"1", "customers"}, {"12", "orders"}}, nil)

	assert.Equal(t,
		"ID  NAME\n"+
			"--  ----\n"+
			"1   customers\n"+
			"12  orders\n",
		out.String())
}

func TestOutput_JSONMode(t *testing.T) {
	o, out, _ := newTestOutput(true)

	o.Print([]string{"ID"}, [][]string{{"1"}}, []domain.Ruleset{{ID: 1, Name: "rs", ConnectorID: 3}})

	var got []domain.Ruleset
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []domain.Ruleset{{ID: 1, Name: "rs", ConnectorID: 3}}, got)
}

func TestOutput_MessagesGoToStderr(t *testing.T) {
	o, out, errOut := newTestOutput(false)

	o.Success("done")
	o.Error("boom")
	o.Infof("%d of %d", 1, 2)

	assert.Empty(t, out.String())
	assert.Equal(t, "done\nError: boom\n1 of 2\n", errOut.String())
}

func TestFormatHelpers(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
	rows := int64(1500)

	assert.Equal(t, "2024-03-01T10:20:30", formatTime(&ts))
	assert.Equal(t, "Unknown", formatTime(nil))
	assert.Equal(t, "1500", formatRows(&rows))
	assert.Equal(t, "Unknown", formatRows(nil))
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1-3", "7"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 7}, ids)

	ids, err = parseIDs([]string{"5,2-3"})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 3}, ids)

	_, err = parseIDs([]string{"x"})
	assert.Error(t, err)

	_, err = parseIDs([]string{"  "})
	assert.Error(t, err)

	// a > b раскрывается в пустой список
	_, err = parseIDs([]string{"5-3"})
	assert.Error(t, err)
}
