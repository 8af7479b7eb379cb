package core

import "testing"

func TestConnectMode_Backlog(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		count    int
		want     []string
	}{
		{"single message repeats", []string{"m"}, 3, []string{"m", "m", "m"}},
		{"rotation", []string{"x", "yy"}, 5, []string{"x", "yy", "x", "yy", "x"}},
		{"count zero", []string{"x"}, 0, nil},
		{"no messages", nil, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &ConnectMode{Messages: tt.messages, Count: tt.count}
			q := m.backlog()
			if q.Length() != len(tt.want) {
				t.Fatalf("Length = %d, want %d", q.Length(), len(tt.want))
			}
			for i, w := range tt.want {
				out := q.Remove().(outbound)
				if out.seq != i {
					t.Errorf("entry %d has seq %d", i, out.seq)
				}
				if string(out.payload) != w {
					t.Errorf("entry %d = %q, want %q", i, out.payload, w)
				}
			}
		})
	}
}
