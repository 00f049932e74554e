package httpcore

import "testing"

func TestSplitURIComponents(t *testing.T) {
	cases := []struct {
		input string
		want  URI
	}{
		{"http://www.example.com:42/demo?q=42#f", URI{
			Scheme: "http", Authority: "www.example.com:42", Path: "/demo", Query: "q=42", Fragment: "f",
		}},
		{"/hello", URI{Path: "/hello"}},
		{"/search?q=1", URI{Path: "/search", Query: "q=1"}},
	}
	for _, c := range cases {
		got := SplitURI(c.input)
		if got != c.want {
			t.Errorf("SplitURI(%q) = %+v, want %+v", c.input, got, c.want)
		}
	}
}
