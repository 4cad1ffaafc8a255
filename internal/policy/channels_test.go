package policy

import (
	"reflect"
	"testing"
)

func TestSplitChannels(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a, b ,c", []string{"a", "b", "c"}},
		{"a", []string{"a"}},
		{"", []string{""}},
		{" a ", []string{"a"}},
		{"a,,b", []string{"a", "", "b"}},
		{"projects/p/notificationChannels/1, projects/p/notificationChannels/2",
			[]string{"projects/p/notificationChannels/1", "projects/p/notificationChannels/2"}},
	}

	for _, tc := range cases {
		got := SplitChannels(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitChannels(%q): got %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestSplitChannels_Idempotent(t *testing.T) {
	once := SplitChannels("a, b ,c")
	for i, seg := range once {
		again := SplitChannels(seg)
		if len(again) != 1 || again[0] != seg {
			t.Errorf("segment %d: re-split of %q changed it: %#v", i, seg, again)
		}
	}
}
