package gpucodegen

import "testing"

func TestToSnakeCasePreservesLeadingUnderscores(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Foo", "foo"},
		{"_Foo", "_foo"},
		{"__Foo", "__foo"},
		{"FooBar", "foo_bar"},
		{"_FooBar", "_foo_bar"},
	}
	for _, c := range cases {
		if got := ToSnakeCase(c.in); got != c.want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToUpperSnakeCasePreservesLeadingUnderscores(t *testing.T) {
	if got := ToUpperSnakeCase("_Foo"); got != "_FOO" {
		t.Errorf("ToUpperSnakeCase(_Foo) = %q, want _FOO", got)
	}
	if got := ToUpperSnakeCase("_Foo") + "_SIZE"; got != "_FOO_SIZE" {
		t.Errorf("size define suffix = %q, want _FOO_SIZE", got)
	}
}
