package integrations_test

import (
	"fmt"

	"github.com/victorsole/brubru/pkg/integrations"
)

func ExampleClient_ResolveURL() {
	client := integrations.NewClient(integrations.Config{
		Name:    "OEIL",
		BaseURL: "https://oeil.secure.europarl.europa.eu/oeil/en/",
	})
	fmt.Println(client.ResolveURL("procedure-file?reference=2021/0106(COD)"))
	// Output:
	// https://oeil.secure.europarl.europa.eu/oeil/en/procedure-file?reference=2021/0106(COD)
}

func ExampleAdapterStats_HitRate() {
	stats := integrations.AdapterStats{CacheHits: 3, CacheMisses: 1}
	fmt.Printf("%.2f\n", stats.HitRate())
	// Output:
	// 0.75
}
