package render

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestTargetArgs(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		want    []string
		wantErr bool
	}{
		{"pdf", Target{Format: "pdf"}, []string{"-f", "pdf"}, false},
		{"png default scale", Target{Format: "png"}, []string{"-f", "png", "-z", "1.00"}, false},
		{"png 2x", Target{Format: "png", Scale: 2}, []string{"-f", "png", "-z", "2.00"}, false},
		{"negative scale", Target{Format: "png", Scale: -1}, nil, true},
		{"unknown", Target{Format: "gif"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.target.args()
			if (err != nil) != tt.wantErr {
				t.Fatalf("args() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertUnsupported(t *testing.T) {
	if _, err := Convert(context.Background(), []byte("<svg/>"), Target{Format: "bmp"}); err == nil {
		t.Error("Convert(bmp) should fail")
	}
}

func TestConvertMissingTool(t *testing.T) {
	if Available() {
		t.Skip(Converter + " is installed")
	}
	_, err := ToPDF([]byte("<svg/>"))
	if !errors.Is(err, ErrNoConverter) {
		t.Errorf("ToPDF() error = %v, want ErrNoConverter", err)
	}
}
