package tableio

// BookRow is the fixed column layout of parquet catalog exports
type BookRow struct {
	ID        string `parquet:"ID"`
	Title     string `parquet:"Title"`
	Author    string `parquet:"Author"`
	Year      string `parquet:"Year"`
	Publisher string `parquet:"Publisher"`
	ISBN      string `parquet:"ISBN"`
	Format    string `parquet:"Format"`
	Language  string `parquet:"Language"`
	URL       string `parquet:"URL"`
}

// BookRowHeaders lists the BookRow columns in schema order
var BookRowHeaders = []string{"ID", "Title", "Author", "Year", "Publisher", "ISBN", "Format", "Language", "URL"}

// Cells returns the row in BookRowHeaders order
func (r BookRow) Cells() []string {
	return []string{r.ID, r.Title, r.Author, r.Year, r.Publisher, r.ISBN, r.Format, r.Language, r.URL}
}
