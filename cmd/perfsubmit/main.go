// Command perfsubmit replays synthetic submissions against a running
// instance and reports client-observed submit latency plus live-feed
// delivery delay. It is a load probe for local tuning, not a load
// generator.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type options struct {
	baseURL string
	count   int
	delay   time.Duration
	timeout time.Duration
	useFeed bool
	verbose bool
}

var sampleNames = []string{
	"Avery Quinn",
	"Rowan Blake",
	"Imani Cole",
	"Selin Demir",
	"Mara O'Brien",
	"Jonas Weber",
	"Priya Nair",
	"Tomás Rivera",
}

// One birth date per sign so a full cycle exercises the whole calendar.
var sampleDates = []string{
	"1990-01-10",
	"1991-02-05",
	"1992-03-15",
	"1993-04-10",
	"1994-05-15",
	"1995-06-15",
	"1996-07-10",
	"1997-08-10",
	"1998-09-10",
	"1999-10-10",
	"2000-11-10",
	"2001-12-25",
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "perfsubmit: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "perfsubmit: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var cfg options
	var delayMS int
	var timeoutMS int

	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8080", "service base URL")
	flag.IntVar(&cfg.count, "count", 24, "number of submissions to replay")
	flag.IntVar(&delayMS, "delay-ms", 50, "pause between submissions in milliseconds")
	flag.IntVar(&timeoutMS, "timeout-ms", 5000, "per-request and per-feed-event timeout in milliseconds")
	flag.BoolVar(&cfg.useFeed, "feed", true, "subscribe to the live feed and measure delivery delay")
	flag.BoolVar(&cfg.verbose, "verbose", false, "print each submission result")
	flag.Parse()

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	if cfg.count <= 0 {
		return options{}, fmt.Errorf("count must be > 0")
	}
	if delayMS < 0 {
		delayMS = 0
	}
	if timeoutMS <= 0 {
		return options{}, fmt.Errorf("timeout-ms must be > 0")
	}
	cfg.delay = time.Duration(delayMS) * time.Millisecond
	cfg.timeout = time.Duration(timeoutMS) * time.Millisecond
	return cfg, nil
}

func run(cfg options) error {
	client := &http.Client{Timeout: cfg.timeout}

	var feedEvents chan time.Time
	if cfg.useFeed {
		wsURL, err := wsURLFor(cfg.baseURL)
		if err != nil {
			return err
		}
		conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return fmt.Errorf("dial feed %s: %w", wsURL, err)
		}
		if res != nil {
			res.Body.Close()
		}
		defer conn.Close()

		feedEvents = make(chan time.Time, cfg.count)
		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var evt struct {
					Type string `json:"type"`
				}
				if json.Unmarshal(data, &evt) != nil || evt.Type != "submission_created" {
					continue
				}
				select {
				case feedEvents <- time.Now():
				default:
				}
			}
		}()
	}

	var (
		submitMS   []float64
		feedMS     []float64
		failures   int
		feedMisses int
	)

	for i := 0; i < cfg.count; i++ {
		payload, _ := json.Marshal(map[string]string{
			"name":        sampleNames[i%len(sampleNames)],
			"dateOfBirth": sampleDates[i%len(sampleDates)],
		})

		start := time.Now()
		res, err := client.Post(cfg.baseURL+"/v1/submissions", "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("submit %d: %w", i+1, err)
		}
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
		elapsed := time.Since(start)

		if res.StatusCode != http.StatusCreated {
			failures++
			if cfg.verbose {
				fmt.Printf("submit %2d: status %d\n", i+1, res.StatusCode)
			}
			continue
		}
		submitMS = append(submitMS, toMS(elapsed))

		if feedEvents != nil {
			select {
			case received := <-feedEvents:
				feedMS = append(feedMS, toMS(received.Sub(start)))
			case <-time.After(cfg.timeout):
				feedMisses++
			}
		}

		if cfg.verbose {
			fmt.Printf("submit %2d: %.2fms\n", i+1, toMS(elapsed))
		}
		if cfg.delay > 0 && i < cfg.count-1 {
			time.Sleep(cfg.delay)
		}
	}

	fmt.Printf("submissions: %d ok, %d failed\n", len(submitMS), failures)
	printSummary("submit latency", summarize(submitMS))
	if feedEvents != nil {
		if feedMisses > 0 {
			fmt.Printf("feed events missed within timeout: %d\n", feedMisses)
		}
		printSummary("feed delivery", summarize(feedMS))
	}

	return printServerStages(client, cfg.baseURL)
}

func wsURLFor(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base-url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("base-url scheme must be http or https, got %q", u.Scheme)
	}
	u.Path = "/v1/submissions/ws"
	return u.String(), nil
}

type latencySummary struct {
	Samples int
	MinMS   float64
	AvgMS   float64
	P50MS   float64
	P95MS   float64
	P99MS   float64
	MaxMS   float64
}

func summarize(samples []float64) latencySummary {
	if len(samples) == 0 {
		return latencySummary{}
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return latencySummary{
		Samples: len(sorted),
		MinMS:   round2(sorted[0]),
		AvgMS:   round2(sum / float64(len(sorted))),
		P50MS:   round2(quantile(sorted, 0.50)),
		P95MS:   round2(quantile(sorted, 0.95)),
		P99MS:   round2(quantile(sorted, 0.99)),
		MaxMS:   round2(sorted[len(sorted)-1]),
	}
}

func printSummary(label string, s latencySummary) {
	if s.Samples == 0 {
		fmt.Printf("%s: no samples\n", label)
		return
	}
	fmt.Printf("%s: n=%d min=%.2fms avg=%.2fms p50=%.2fms p95=%.2fms p99=%.2fms max=%.2fms\n",
		label, s.Samples, s.MinMS, s.AvgMS, s.P50MS, s.P95MS, s.P99MS, s.MaxMS)
}

func printServerStages(client *http.Client, baseURL string) error {
	res, err := client.Get(baseURL + "/v1/perf/latency")
	if err != nil {
		return fmt.Errorf("fetch server stages: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read server stages: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("server stages status %d", res.StatusCode)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return fmt.Errorf("format server stages: %w", err)
	}
	fmt.Printf("server pipeline stages:\n%s\n", pretty.String())
	return nil
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := q * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func toMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
