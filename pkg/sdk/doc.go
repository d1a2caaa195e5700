// Package catalogsearch embeds the catalog search engine in a Go program.
//
// The client builds the index from a catalog file (JSON or XLSX) and answers
// free-text queries with ranked items, facets and the structured reading of the
// query. With a Redis or file store configured, built indexes are persisted and
// reused on the next start.
//
//	client, _ := catalogsearch.New(ctx,
//	    catalogsearch.WithCatalogFile("catalog.json"),
//	    catalogsearch.WithManualFile("manual.json"),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, catalogsearch.SearchQuery{
//	    Query:   "арматура ф12 а500",
//	    Filters: map[string][]string{"class": {"A500"}},
//	})
//	for _, it := range res.Items {
//	    fmt.Println(it.Title, it.Score)
//	}
package catalogsearch
