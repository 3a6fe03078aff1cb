package ledger

// DefaultBookStock is the stock a book gets when the catalog does not provide one.
const DefaultBookStock = 1

// Book is the inventory unit of the ledger.
//
// AvailableStock is the number of copies that can be lent right now and is never negative.
// TotalCopies is the provisioned number of copies as maintained by the catalog; it is the
// upper bound of AvailableStock and the reference value for stock reconciliation.
type Book struct {
	ID             BookID
	Title          string
	Author         string
	AvailableStock int
	TotalCopies    int
}

// HasStock reports whether at least one copy can be lent.
func (b Book) HasStock() bool {
	return b.AvailableStock > 0
}

// Books is an alias type for a slice of Book.
type Books = []Book
