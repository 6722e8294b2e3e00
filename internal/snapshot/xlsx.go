package snapshot

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/zurihub/places-cli/internal/model"
)

// ExportXLSX renders a category document as a workbook: one sheet with the
// per-trade leaderboards, one with the full sorted place list.
func ExportXLSX(doc *Document, path string) error {
	file := xlsx.NewFile()

	byID := make(map[string]model.Place, len(doc.Places))
	for _, p := range doc.Places {
		byID[p.ID] = p
	}

	if err := addRankingSheet(file, doc, byID); err != nil {
		return err
	}
	if err := addPlacesSheet(file, doc); err != nil {
		return err
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "snapshot: save workbook %s", path)
	}
	return nil
}

func addRankingSheet(file *xlsx.File, doc *Document, byID map[string]model.Place) error {
	sheet, err := file.AddSheet("Rankings")
	if err != nil {
		return eris.Wrap(err, "snapshot: add rankings sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Trade", "List", "Rank", "Name", "Rating", "Reviews"} {
		header.AddCell().Value = h
	}

	lists := []struct {
		name string
		ids  func(model.Leaderboard) []string
	}{
		{"top_rated", func(b model.Leaderboard) []string { return b.TopRated }},
		{"worst_rated", func(b model.Leaderboard) []string { return b.WorstRated }},
		{"most_reviewed", func(b model.Leaderboard) []string { return b.MostReviewed }},
	}

	trades := make([]string, 0, len(doc.Rankings))
	for trade := range doc.Rankings {
		trades = append(trades, trade)
	}
	sort.Strings(trades)

	for _, trade := range trades {
		board := doc.Rankings[trade]
		for _, list := range lists {
			for rank, id := range list.ids(board) {
				p := byID[id]
				row := sheet.AddRow()
				row.AddCell().Value = trade
				row.AddCell().Value = list.name
				row.AddCell().SetInt(rank + 1)
				row.AddCell().Value = p.Name
				row.AddCell().SetFloat(p.Rating)
				row.AddCell().SetInt(p.ReviewCount)
			}
		}
	}
	return nil
}

func addPlacesSheet(file *xlsx.File, doc *Document) error {
	sheet, err := file.AddSheet("Places")
	if err != nil {
		return eris.Wrap(err, "snapshot: add places sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Name", "Trade", "Rating", "Reviews", "Address", "Phone", "Website", "Maps"} {
		header.AddCell().Value = h
	}

	for _, p := range doc.Places {
		row := sheet.AddRow()
		row.AddCell().Value = p.Name
		row.AddCell().Value = p.Trade
		row.AddCell().SetFloat(p.Rating)
		row.AddCell().SetInt(p.ReviewCount)
		row.AddCell().Value = p.Address
		row.AddCell().Value = p.Phone
		row.AddCell().Value = p.Website
		row.AddCell().Value = p.MapsURL
	}
	return nil
}
