package attachments

import "testing"

func TestSplitURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://my-bucket/receipts/u1/recibo.jpg", "my-bucket", "receipts/u1/recibo.jpg", false},
		{"gs://my-bucket/file.png", "my-bucket", "file.png", false},
		{"gs://my-bucket/", "", "", true},
		{"gs://my-bucket", "", "", true},
		{"https://example.com/file.png", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		bucket, object, err := SplitURI(tt.uri)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SplitURI(%q) expected error", tt.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitURI(%q) unexpected error: %v", tt.uri, err)
			continue
		}
		if bucket != tt.wantBucket || object != tt.wantObject {
			t.Errorf("SplitURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
		}
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/folder/recibo.jpg", "recibo.jpg"},
		{"gs://bucket/recibo.jpg", "recibo.jpg"},
		{"gs://bucket", "bucket"},
	}
	for _, tt := range tests {
		if got := Filename(tt.uri); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
