// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/terrapoint-foundation/terrapoint/lib/testutil"
)

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("substitutes every occurrence", func(t *testing.T) {
		t.Parallel()

		input := []byte("db=!DB! host=!HOST!\n# again: !DB!\n")
		rendered, err := Render(input, map[string]string{"DB": "clouds", "HOST": "pg.local"})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		want := "db=clouds host=pg.local\n# again: clouds\n"
		if string(rendered) != want {
			t.Errorf("rendered = %q, want %q", rendered, want)
		}
	})

	t.Run("unknown tokens preserved", func(t *testing.T) {
		t.Parallel()

		input := []byte("known=!DB! later=!NOT_YET_SET!")
		rendered, err := Render(input, map[string]string{"DB": "clouds"})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !bytes.Contains(rendered, []byte("!NOT_YET_SET!")) {
			t.Errorf("unknown token was not preserved: %q", rendered)
		}
	})

	t.Run("missing required value", func(t *testing.T) {
		t.Parallel()

		_, err := Render([]byte("!DB!"), map[string]string{}, "DB", "HOST")
		var missing *MissingValueError
		if !errors.As(err, &missing) {
			t.Fatalf("error = %v, want *MissingValueError", err)
		}
		if len(missing.Tokens) != 2 || missing.Tokens[0] != "DB" || missing.Tokens[1] != "HOST" {
			t.Errorf("missing tokens = %v, want [DB HOST]", missing.Tokens)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		input := []byte("srid=!SRID!\r\ntable=!TABLE!\r\n")
		values := map[string]string{"SRID": "4326", "TABLE": "patches"}
		once, err := Render(input, values, "SRID", "TABLE")
		if err != nil {
			t.Fatalf("first Render: %v", err)
		}
		twice, err := Render(once, values, "SRID", "TABLE")
		if err != nil {
			t.Fatalf("second Render: %v", err)
		}
		if !bytes.Equal(once, twice) {
			t.Errorf("second render changed output: %q vs %q", once, twice)
		}
		// CRLF line endings pass through untouched.
		if !bytes.Contains(once, []byte("\r\n")) {
			t.Errorf("line endings not preserved: %q", once)
		}
	})

	t.Run("token names never match as substrings", func(t *testing.T) {
		t.Parallel()

		// DB must not fire inside !DBNAME!.
		rendered, err := Render([]byte("!DB! !DBNAME!"), map[string]string{"DB": "short"})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if string(rendered) != "short !DBNAME!" {
			t.Errorf("rendered = %q, want %q", rendered, "short !DBNAME!")
		}
	})

	t.Run("value containing a token form is not re-expanded", func(t *testing.T) {
		t.Parallel()

		rendered, err := Render([]byte("!A!"), map[string]string{"A": "!B!", "B": "loop"})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if string(rendered) != "!B!" {
			t.Errorf("rendered = %q, want literal !B!", rendered)
		}
	})
}

func TestRenderFile(t *testing.T) {
	t.Parallel()

	t.Run("writes rendered artifact", func(t *testing.T) {
		t.Parallel()

		dir := testutil.WorkDir(t)
		path := filepath.Join(dir, "out.sql")
		if err := RenderFile(path, []byte("srid=!SRID!"), map[string]string{"SRID": "4326"}, "SRID"); err != nil {
			t.Fatalf("RenderFile: %v", err)
		}
		if got := testutil.ReadFile(t, path); got != "srid=4326" {
			t.Errorf("artifact = %q, want %q", got, "srid=4326")
		}
	})

	t.Run("no artifact on missing value", func(t *testing.T) {
		t.Parallel()

		dir := testutil.WorkDir(t)
		path := filepath.Join(dir, "out.sql")
		err := RenderFile(path, []byte("!SRID!"), nil, "SRID")
		var missing *MissingValueError
		if !errors.As(err, &missing) {
			t.Fatalf("error = %v, want *MissingValueError", err)
		}
		if _, statErr := os.Stat(path); statErr == nil {
			t.Error("artifact was written despite render failure")
		}
	})
}

func TestTokens(t *testing.T) {
	t.Parallel()

	names := Tokens([]byte("!B! !A! !B! not-a-token !lower! !C1!"))
	want := []string{"B", "A", "C1"}
	if len(names) != len(want) {
		t.Fatalf("tokens = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tokens[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
