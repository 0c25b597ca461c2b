package normalize

import (
	"github.com/feedkit/calamine/internal/dom"
)

var tableSections = dom.NewTagSet("tbody", "tfoot", "thead")

// unwrapSingleColumnTables replaces layout tables that hold one column of
// content with a paragraph per row. Inner tables are visited first so an
// outer layout table sees its nested tables already flattened.
func (n *Normalizer) unwrapSingleColumnTables(t *dom.Tree) bool {
	tables := t.ElementsByTag(t.Root(), "table")
	changed := false
	for i := len(tables) - 1; i >= 0; i-- {
		table := tables[i]
		if !t.Attached(table) {
			continue
		}
		rows := tableRows(t, table)
		if len(rows) == 0 || !n.isSingleColumn(t, rows) {
			continue
		}
		n.flattenTable(t, table, rows)
		changed = true
	}
	return changed
}

// tableRows returns the rows owned by table, excluding rows of nested
// tables, in document order.
func tableRows(t *dom.Tree, table dom.NodeID) []dom.NodeID {
	var rows []dom.NodeID
	for _, c := range t.ElementChildren(table) {
		switch {
		case t.Is(c, "tr"):
			rows = append(rows, c)
		case tableSections.Has(t.Tag(c)):
			for _, r := range t.ElementChildren(c) {
				if t.Is(r, "tr") {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

func (n *Normalizer) isSingleColumn(t *dom.Tree, rows []dom.NodeID) bool {
	for i, row := range rows {
		if i >= n.opts.RowScanLimit {
			break
		}
		if len(n.contentCells(t, row)) > 1 {
			return false
		}
	}
	return true
}

func (n *Normalizer) contentCells(t *dom.Tree, row dom.NodeID) []dom.NodeID {
	var cells []dom.NodeID
	for _, c := range t.ElementChildren(row) {
		if (t.Is(c, "td") || t.Is(c, "th")) && !t.IsLeaf(c, n.opts.LeafExceptions) {
			cells = append(cells, c)
		}
	}
	return cells
}

// flattenTable inserts the caption and one paragraph per non-empty row
// before table, then removes it. Rows past the scan limit that hold more
// than one cell keep their cells side by side, separated by a space.
func (n *Normalizer) flattenTable(t *dom.Tree, table dom.NodeID, rows []dom.NodeID) {
	parent := t.Parent(table)
	for _, c := range t.ElementChildren(table) {
		if t.Is(c, "caption") && !t.IsLeaf(c, n.opts.LeafExceptions) {
			p := t.CreateElement("p")
			moveChildren(t, c, p)
			t.InsertBefore(parent, p, table)
		}
	}
	for _, row := range rows {
		cells := n.contentCells(t, row)
		if len(cells) == 0 {
			continue
		}
		p := t.CreateElement("p")
		for i, cell := range cells {
			if i > 0 {
				t.AppendChild(p, t.CreateText(" "))
			}
			moveChildren(t, cell, p)
		}
		t.InsertBefore(parent, p, table)
	}
	t.Detach(table)
}

func moveChildren(t *dom.Tree, from, to dom.NodeID) {
	for c := t.FirstChild(from); c != dom.NoNode; c = t.FirstChild(from) {
		t.AppendChild(to, c)
	}
}
