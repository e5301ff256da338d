package golden_test

import (
	"fmt"
	"testing"

	"github.com/cboone/golden"
)

func ExampleMatch() {
	out, err := golden.Match(
		golden.Text("hello [..]\n...\nbye\n"),
		golden.Text("hello world\nstep 1\nstep 2\nbye\n"),
	)
	if err != nil {
		panic(err)
	}
	fmt.Println(out.Equal)
	// Output: true
}

func ExampleMatch_json() {
	out, err := golden.Match(
		golden.FromBytes([]byte(`{"id": "...", "status": "ok"}`), golden.FormatJSON),
		golden.JSON(map[string]any{"id": "abc123", "status": "fail"}),
	)
	if err != nil {
		panic(err)
	}
	fmt.Println(out.Summary())
	// Output: /status: value changed: expected "ok", got "fail"
}

func ExampleDiff() {
	fmt.Print(golden.Diff(
		golden.Text("a\nb\nc\n"),
		golden.Text("a\nx\nc\n"),
		golden.WithPalette(golden.PlainPalette()),
	))
	// Output:
	// --- expected
	// +++ actual
	//    1    1 | a
	//    2      - b
	//         2 + x
	//    3    3 | c
}

func ExampleEq() {
	_ = func(t *testing.T) {
		golden.Eq(t, golden.Inline(`
			status: ok
			took [..]
			`), golden.Text(runApp()))
	}
}

func ExampleAssert_Snapshot() {
	_ = func(t *testing.T) {
		a := golden.New(t, golden.WithRedaction("[HOST]", "db.internal"))
		a.Snapshot("report", golden.JSON(map[string]any{"host": "db.internal"}))
	}
}

func runApp() string { return "status: ok\ntook 3ms\n" }
