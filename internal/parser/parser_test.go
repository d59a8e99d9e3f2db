package parser

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func mustParse(t *testing.T, line string) Sequence {
	t.Helper()
	seq, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", line, err)
	}
	return seq
}

func TestParseSimplePipeline(t *testing.T) {
	seq := mustParse(t, "echo hello | grep he")
	want := Sequence{Pipelines: []Pipeline{{
		Stages: []Stage{
			{Args: []string{"echo", "hello"}},
			{Args: []string{"grep", "he"}},
		},
	}}}
	if diff := pretty.Compare(want, seq); diff != "" {
		t.Fatalf("unexpected graph (-want +got):\n%s", diff)
	}
}

func TestParseRedirections(t *testing.T) {
	seq := mustParse(t, "cat < in.txt > out.txt")
	st := seq.Pipelines[0].Stages[0]
	if len(st.Redir) != 2 {
		t.Fatalf("expected 2 redirections, got %d: %+v", len(st.Redir), st.Redir)
	}
	if st.Redir[0].Kind != RedirIn || st.Redir[0].File != "in.txt" {
		t.Errorf("redir[0] = %+v, want RedirIn in.txt", st.Redir[0])
	}
	if st.Redir[1].Kind != RedirOut || st.Redir[1].File != "out.txt" {
		t.Errorf("redir[1] = %+v, want RedirOut out.txt", st.Redir[1])
	}
}

func TestParseAppendRedirection(t *testing.T) {
	seq := mustParse(t, "echo hi >> log.txt")
	st := seq.Pipelines[0].Stages[0]
	if len(st.Redir) != 1 || st.Redir[0].Kind != RedirAppend || st.Redir[0].File != "log.txt" {
		t.Fatalf("got %+v, want single RedirAppend log.txt", st.Redir)
	}
}

func TestParseMissingRedirectTarget(t *testing.T) {
	if _, err := Parse("cat <"); err == nil {
		t.Fatalf("expected syntax error for dangling redirection")
	}
}

func TestParseBackground(t *testing.T) {
	seq := mustParse(t, "sleep 1 &")
	if !seq.Pipelines[0].Background {
		t.Fatalf("expected background pipeline")
	}
}

func TestParseSequence(t *testing.T) {
	seq := mustParse(t, "echo a; echo b")
	if len(seq.Pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(seq.Pipelines))
	}
}

func TestParseEmptyStagesDropped(t *testing.T) {
	seq := mustParse(t, "echo a | | echo b")
	// The empty middle stage between the two pipes is dropped silently;
	// the two real stages remain in the same pipeline.
	if len(seq.Pipelines) != 1 {
		t.Fatalf("expected a single pipeline, got %d", len(seq.Pipelines))
	}
	if len(seq.Pipelines[0].Stages) != 2 {
		t.Fatalf("expected 2 stages after dropping the empty one, got %d", len(seq.Pipelines[0].Stages))
	}
}

func TestQuotingLossless(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{`'a b'`, "a b"},
		{`"a b"`, "a b"},
		{`a\ b`, "a b"},
		{`"line\nbreak"`, "line\nbreak"},
		{`"quote\"inside"`, `quote"inside`},
	}
	for _, c := range cases {
		seq := mustParse(t, c.line)
		got := seq.Pipelines[0].Stages[0].Args[0]
		if got != c.want {
			t.Errorf("Parse(%q) arg = %q, want %q", c.line, got, c.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	lines := []string{
		"echo hello | grep he",
		"cat < in.txt > out.txt",
		"echo a; echo b",
		"sleep 1 &",
	}
	for _, line := range lines {
		first := mustParse(t, line)
		again := mustParse(t, Serialize(first))
		if diff := pretty.Compare(first, again); diff != "" {
			t.Errorf("round-trip mismatch for %q (-first +again):\n%s", line, diff)
		}
	}
}
