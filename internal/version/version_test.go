package version

import "testing"

func TestString(t *testing.T) {
	orig := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = orig[0], orig[1], orig[2] })

	Version, Commit, Date = "v1.2.0", "abc1234", "2026-01-02"
	if got, want := String(), "v1.2.0 (abc1234, 2026-01-02)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if fs := Fields(); len(fs) != 3 || fs[0].String != "v1.2.0" || fs[2].Key != "build_date" {
		t.Errorf("Fields() = %+v", fs)
	}
}
