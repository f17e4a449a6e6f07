package cache

import "strconv"

// KeyProduct returns the cache key for a product row.
func KeyProduct(id int64) string {
	return "pricing:product:" + strconv.FormatInt(id, 10)
}

// KeyTiers returns the cache key for a product's pricing tier table.
func KeyTiers(productID int64) string {
	return "pricing:tiers:" + strconv.FormatInt(productID, 10)
}

// KeyBundle returns the cache key for a bundle code.
func KeyBundle(code string) string {
	return "pricing:bundle:" + code
}

// KeyCatalogFirstPage is the key for the unfiltered first catalog page.
const KeyCatalogFirstPage = "catalog:products:list:first"

// KeysForProduct lists every key invalidated when a product or its tiers change.
func KeysForProduct(id int64) []string {
	return []string{KeyProduct(id), KeyTiers(id), KeyCatalogFirstPage}
}
