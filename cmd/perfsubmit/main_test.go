package main

import (
	"math"
	"testing"
)

func TestSummarizeComputesQuantiles(t *testing.T) {
	samples := []float64{50, 10, 30, 20, 40}

	got := summarize(samples)

	if got.Samples != 5 {
		t.Fatalf("Samples = %d, want 5", got.Samples)
	}
	if got.MinMS != 10 {
		t.Fatalf("MinMS = %v, want 10", got.MinMS)
	}
	if got.MaxMS != 50 {
		t.Fatalf("MaxMS = %v, want 50", got.MaxMS)
	}
	if got.AvgMS != 30 {
		t.Fatalf("AvgMS = %v, want 30", got.AvgMS)
	}
	if got.P50MS != 30 {
		t.Fatalf("P50MS = %v, want 30", got.P50MS)
	}
	if got.P95MS <= 40 || got.P95MS > 50 {
		t.Fatalf("P95MS = %v, want in (40, 50]", got.P95MS)
	}
	if samples[0] != 50 {
		t.Fatalf("summarize mutated its input: %v", samples)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := summarize(nil)
	if got.Samples != 0 || got.AvgMS != 0 || got.MaxMS != 0 {
		t.Fatalf("summarize(nil) = %+v, want zero summary", got)
	}
}

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	if got := quantile(sorted, 0); got != 10 {
		t.Fatalf("quantile(0) = %v, want 10", got)
	}
	if got := quantile(sorted, 1); got != 40 {
		t.Fatalf("quantile(1) = %v, want 40", got)
	}
	if got := quantile(sorted, 0.5); math.Abs(got-25) > 1e-9 {
		t.Fatalf("quantile(0.5) = %v, want 25", got)
	}
}

func TestWSURLFor(t *testing.T) {
	cases := []struct {
		baseURL string
		want    string
		wantErr bool
	}{
		{baseURL: "http://127.0.0.1:8080", want: "ws://127.0.0.1:8080/v1/submissions/ws"},
		{baseURL: "https://stars.example", want: "wss://stars.example/v1/submissions/ws"},
		{baseURL: "ftp://stars.example", wantErr: true},
	}
	for _, tc := range cases {
		got, err := wsURLFor(tc.baseURL)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("wsURLFor(%q) err = nil, want error", tc.baseURL)
			}
			continue
		}
		if err != nil {
			t.Fatalf("wsURLFor(%q) err = %v", tc.baseURL, err)
		}
		if got != tc.want {
			t.Fatalf("wsURLFor(%q) = %q, want %q", tc.baseURL, got, tc.want)
		}
	}
}
