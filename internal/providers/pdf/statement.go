package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// StatementData is a formatted royalty statement for one song.
type StatementData struct {
	Title        string
	Genre        string
	Status       string
	ReleaseDate  string
	IssuedAt     string
	Streams      string
	Revenue      string
	Distributor  string
	Lines        []StatementLine
	TotalPercent string
	TotalAmount  string
}

type StatementLine struct {
	Party      string
	Role       string
	Percentage string
	Amount     string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Royalty statement", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(28,
		col.New(6).Add(
			text.New(data.Title, props.Text{Style: fontstyle.Bold, Size: 12}),
			text.New("Genre: "+data.Genre, props.Text{Top: 6}),
			text.New("Status: "+data.Status, props.Text{Top: 11}),
			text.New("Release date: "+data.ReleaseDate, props.Text{Top: 16}),
		),
		col.New(6).Add(
			text.New("Issued: "+data.IssuedAt, props.Text{Align: align.Right}),
			text.New("Streams: "+data.Streams, props.Text{Top: 6, Align: align.Right}),
			text.New("Revenue: "+data.Revenue, props.Text{Top: 11, Align: align.Right, Style: fontstyle.Bold}),
		),
	)

	m.AddRow(10,
		text.NewCol(5, "Party", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Role", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Share", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, l := range data.Lines {
		m.AddRow(8,
			text.NewCol(5, l.Party, props.Text{Size: 9}),
			text.NewCol(3, l.Role, props.Text{Size: 9}),
			text.NewCol(2, l.Percentage, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, l.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(10,
		col.New(6),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.TotalPercent, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, data.TotalAmount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(12, fmt.Sprintf("Distributor share: %s", data.Distributor), props.Text{Size: 8, Top: 4}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
