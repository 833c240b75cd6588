package utils

const catalogKeyPrefix = "catalog:v1:"

func CatalogKeyPrefix() string {
	return catalogKeyPrefix
}

func BuildProductsListCacheKey() string {
	return catalogKeyPrefix + "list"
}

func BuildProductCacheKey(id string) string {
	return catalogKeyPrefix + "product:" + id
}
