package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"sales-assistant-be/internal/dto"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	promptColor = color.New(color.FgBlue, color.Bold)
	errorColor  = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)

	kindColors = map[string]*color.Color{
		"UNIQUE_MATCH":   color.New(color.FgGreen, color.Bold),
		"DISAMBIGUATION": color.New(color.FgYellow, color.Bold),
		"NO_MATCH":       color.New(color.FgRed, color.Bold),
	}
)

func printOutcome(w io.Writer, out *dto.Outcome) {
	kc, ok := kindColors[out.Kind]
	if !ok {
		kc = color.New(color.Reset)
	}
	kc.Fprintf(w, "[%s]", out.Kind)
	dimColor.Fprintf(w, " intent=%s lang=%s topic=%s\n", out.Intent, out.Language, out.Topic)

	for _, ref := range out.References {
		if ref.Resolved {
			dimColor.Fprintf(w, "  %q -> %s %s\n", ref.Phrase, ref.Kind, ref.Value)
		}
	}

	if out.Match != nil {
		printProduct(w, "", out.Match)
	}
	for i := range out.Candidates {
		printProduct(w, fmt.Sprintf("%d. ", i+1), &out.Candidates[i])
	}
	if out.Page != nil && out.Page.Total > 0 {
		dimColor.Fprintf(w, "  showing %d-%d of %d", out.Page.Start+1, out.Page.End, out.Page.Total)
		if out.Page.Remaining > 0 {
			dimColor.Fprintf(w, ", %d more (say \"show more\")", out.Page.Remaining)
		}
		fmt.Fprintln(w)
	}

	if out.Order != nil {
		printOrder(w, out.Order)
	}
	for i := range out.Orders {
		printOrder(w, &out.Orders[i])
	}
}

func printProduct(w io.Writer, prefix string, p *dto.ProductDTO) {
	fmt.Fprintf(w, "  %s%s  %.2f %s  %s\n", prefix, p.Name, p.Price, p.Currency, p.StockStatus)
	if p.URL != "" {
		dimColor.Fprintf(w, "     %s\n", p.URL)
	}
}

func printOrder(w io.Writer, o *dto.OrderDTO) {
	fmt.Fprintf(w, "  order #%s  %s  %.2f %s\n", o.Number, o.Status, o.Total, o.Currency)
	for _, it := range o.Items {
		dimColor.Fprintf(w, "     %dx %s\n", it.Quantity, it.Name)
	}
}
