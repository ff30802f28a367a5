package catalog

import "testing"

func TestDialDigits(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"JOKE", "5653"},
		{"time", "8463"},
		{"Weather", "9328437"},
		{"411", "411"},
		{"QZ", ""}, // no home on the classic dial
		{"PIZZA-2U", "74228"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DialDigits(tc.in); got != tc.want {
			t.Fatalf("DialDigits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestServiceExtensionsSpellTheirNames(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	for _, svc := range c.Services() {
		// operator and directory keep their traditional numbers
		if svc.Extension == "0" || svc.Extension == "411" {
			continue
		}
		if got := DialDigits(svc.Key); got[:len(svc.Extension)] != svc.Extension {
			t.Fatalf("%s: keypad spelling %q does not start with extension %q", svc.Key, got, svc.Extension)
		}
	}
}

func TestSpokenDigits(t *testing.T) {
	if got := SpokenDigits("5653"); got != "5 6 5 3" {
		t.Fatalf("SpokenDigits(5653) = %q", got)
	}
	if got := SpokenDigits("0"); got != "0" {
		t.Fatalf("SpokenDigits(0) = %q", got)
	}
}
