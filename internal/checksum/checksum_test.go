package checksum

import "testing"

func TestSum_KnownDigest(t *testing.T) {
	got := Sum([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("Sum = %q, want %q", got, want)
	}
}

func TestMatches(t *testing.T) {
	data := []byte("deck")
	sum := Sum(data)
	cases := []struct {
		ifMatch string
		want    bool
	}{
		{"", true},
		{sum, true},
		{`"` + sum + `"`, true},
		{"stale", false},
	}
	for _, c := range cases {
		if got := Matches(data, c.ifMatch); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.ifMatch, got, c.want)
		}
	}
}
