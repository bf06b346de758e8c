// Package cli renders detection results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
	grpcpresentation "github.com/phishsense/phishsense/internal/presentation/grpc"
)

// Exit codes of the phishsense command.
const (
	ExitSafe     = 0
	ExitPhishing = 1
	ExitFatal    = 2
)

// Report is what the command prints for one URL. The verbose fields are
// omitted unless requested.
type Report struct {
	URL                   string        `json:"url"`
	IsPhishing            bool          `json:"is_phishing"`
	Confidence            float64       `json:"confidence"`
	ThreatLevel           string        `json:"threat_level"`
	Reasons               []string      `json:"reasons"`
	HeuristicScore        *float64      `json:"heuristic_score,omitempty"`
	ClassifierProbability *float64      `json:"classifier_probability,omitempty"`
	Features              []dto.Feature `json:"features,omitempty"`
	Facts                 *dto.Facts    `json:"facts,omitempty"`
	verbose               bool
}

// FromResponse builds a report from a local detection.
func FromResponse(resp dto.DetectionResponse) Report {
	r := Report{
		URL:         resp.URL,
		IsPhishing:  resp.IsPhishing,
		Confidence:  dto.Round(resp.Confidence),
		ThreatLevel: resp.ThreatLevel,
		Reasons:     resp.Reasons,
	}
	if d := resp.Details; d != nil {
		r.verbose = true
		score := d.HeuristicScore
		r.HeuristicScore = &score
		r.ClassifierProbability = d.ClassifierProbability
		r.Features = d.Features
		r.Facts = d.Facts
	}
	return r
}

// FromMessage builds a report from a remote gRPC detection.
func FromMessage(msg *grpcpresentation.DetectionMsg, verbose bool) Report {
	r := Report{
		URL:         msg.URL,
		IsPhishing:  msg.IsPhishing,
		Confidence:  dto.Round(msg.Confidence),
		ThreatLevel: msg.ThreatLevel,
		Reasons:     msg.Reasons,
	}
	if verbose {
		r.verbose = true
		score := msg.HeuristicScore
		r.HeuristicScore = &score
		r.ClassifierProbability = msg.ClassifierProbability
		for _, f := range msg.Features {
			r.Features = append(r.Features, dto.Feature{Name: f.Name, Value: f.Value})
		}
	}
	return r
}

// ExitCode maps the verdict to the process exit code.
func (r Report) ExitCode() int {
	if r.Verdict().IsPhishing() {
		return ExitPhishing
	}
	return ExitSafe
}

// Verdict returns the binary outcome the report describes.
func (r Report) Verdict() valueobject.Verdict {
	return valueobject.VerdictOf(r.IsPhishing)
}

// Printer writes reports as styled text or JSON.
type Printer struct {
	out  io.Writer
	json bool
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, asJSON bool) *Printer {
	return &Printer{out: out, json: asJSON}
}

// Print writes one report.
func (p *Printer) Print(r Report) error {
	if r.Reasons == nil {
		r.Reasons = []string{}
	}
	if p.json {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err := io.WriteString(p.out, r.text())
	return err
}

// PrintError writes a fatal diagnostic. In JSON mode it is an {"error": ...} object.
func (p *Printer) PrintError(err error) error {
	if p.json {
		return json.NewEncoder(p.out).Encode(map[string]string{"error": err.Error()})
	}
	_, werr := fmt.Fprintln(p.out, ErrorStyle.Render("error:")+" "+err.Error())
	return werr
}

func (r Report) text() string {
	var b strings.Builder

	v := r.Verdict()
	verdict := LegitimateStyle.Render(v.String())
	if v.IsPhishing() {
		verdict = PhishingStyle.Render(v.String())
	}

	line := func(label, value string) {
		b.WriteString(LabelStyle.Render(label) + value + "\n")
	}

	line("URL:", r.URL)
	line("Verdict:", verdict)
	line("Confidence:", ValueStyle.Render(fmt.Sprintf("%.3f", r.Confidence)))
	line("Threat level:", ThreatLevelStyle(r.ThreatLevel).Render(r.ThreatLevel))

	b.WriteString(SectionStyle.Render("Reasons") + "\n")
	for _, reason := range r.Reasons {
		b.WriteString(ReasonStyle.Render("- "+reason) + "\n")
	}

	if !r.verbose {
		return b.String()
	}

	b.WriteString(SectionStyle.Render("Scores") + "\n")
	if r.HeuristicScore != nil {
		line("Heuristic:", fmt.Sprintf("%.3f", *r.HeuristicScore))
	}
	if r.ClassifierProbability != nil {
		line("Classifier:", fmt.Sprintf("%.3f", *r.ClassifierProbability))
	} else {
		line("Classifier:", "unavailable")
	}

	if r.Facts != nil {
		b.WriteString(SectionStyle.Render("Lookups") + "\n")
		line("Host:", r.Facts.Host)
		line("Domain age:", r.Facts.DomainAge)
		line("SSL valid:", r.Facts.SSLValid)
		line("DNS resolves:", r.Facts.DNSResolves)
		if r.Facts.Typosquat != "" {
			line("Imitates:", r.Facts.Typosquat)
		}
	}

	if len(r.Features) > 0 {
		b.WriteString(SectionStyle.Render("Features") + "\n")
		for _, f := range r.Features {
			line(f.Name, formatFeature(f.Value))
		}
	}
	return b.String()
}

func formatFeature(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.4f", v)
}
