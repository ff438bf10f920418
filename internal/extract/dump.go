package extract

import (
	"bufio"
	"fmt"
	"io"
)

// DumpSummary reports what Dump wrote.
type DumpSummary struct {
	Names   int
	Slots   int
	Objects int
}

// Dump writes a diagnostic listing of every live object to w: the table
// roots and their counts, then one entry per object with its slot, serial,
// item flags, address and resolved name.
func (e *Extractor) Dump(w io.Writer) (DumpSummary, error) {
	res, reg, err := e.Open()
	if err != nil {
		return DumpSummary{}, fmt.Errorf("dump: %w", err)
	}
	bw := bufio.NewWriter(w)
	nh := res.Header()
	oh := reg.Header()
	fmt.Fprintf(bw, "Base address = %#x\n", e.target.Base)
	fmt.Fprintf(bw, "Name table = %#x\n", res.Address())
	fmt.Fprintf(bw, "NumElements = %d NumChunks = %d\n", nh.NumElements, nh.NumChunks)
	fmt.Fprintf(bw, "Object array = %#x\n", e.target.ObjectArray())
	fmt.Fprintf(bw, "NumElements = %d NumChunks = %d\n\n", oh.NumElements, oh.NumChunks)

	sum := DumpSummary{Names: res.Len(), Slots: reg.Len()}
	for rec, err := range reg.Scan() {
		if err != nil {
			bw.Flush()
			return sum, fmt.Errorf("dump: %w", err)
		}
		sum.Objects++
		name, nerr := res.Resolve(rec.Name)
		if nerr != nil {
			name = "<" + nerr.Error() + ">"
		}
		fmt.Fprintf(bw, "[%d] SerialNumber: %d Flags: %d Object: %#x\n", rec.Index, rec.Serial, rec.ItemFlags, rec.Address)
		fmt.Fprintf(bw, "\tNamePrivate: Number=%d ComparisonIndex=%d String=%q\n", rec.Name.Number, rec.Name.ComparisonIndex, name)
	}
	fmt.Fprintf(bw, "Object dump finished. Total %d Objects\n", sum.Objects)
	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("dump: %w", err)
	}
	return sum, nil
}
