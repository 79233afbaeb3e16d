package answer

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ls -a", "ls -a"},
		{"  LS   -a ", "ls -a"},
		{"GREP\t-r  'foo' .", "grep -r 'foo' ."},
		{"", ""},
		{"   ", ""},
		{"CAT", "cat"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name       string
		user       string
		correct    string
		acceptable []string
		want       bool
	}{
		{"exact", "ls -a", "ls -a", nil, true},
		{"case and whitespace", "  LS   -a ", "ls -a", nil, true},
		{"wrong answer", "ls", "ls -a", nil, false},
		{"acceptable alternative", "ls --all", "ls -a", []string{"ls --all"}, true},
		{"acceptable needs normalizing", "LS  --ALL", "ls -a", []string{" ls --all "}, true},
		{"not in acceptable set", "dir", "ls -a", []string{"ls --all"}, false},
		{"empty user answer", "   ", "ls", nil, false},
		{"no fuzzy matching", "ls -la", "ls -a", nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Validate(c.user, c.correct, c.acceptable); got != c.want {
				t.Errorf("Validate(%q, %q, %v) = %v, want %v", c.user, c.correct, c.acceptable, got, c.want)
			}
		})
	}
}

func TestMask(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ls -la", "l_ -__"},
		{"chmod +x run.sh", "c____ __ ______"},
		{"cat /etc/passwd", "c__ /___/______"},
		{"", "No hint available"},
	}
	for _, c := range cases {
		if got := Mask(c.in); got != c.want {
			t.Errorf("Mask(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
