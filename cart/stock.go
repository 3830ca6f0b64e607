package cart

import (
	"carrito-mascota-me/models"
	"carrito-mascota-me/utils"
)

// StockCeiling returns the maximum legal quantity for a product and an
// optional size/color selection. Tie-break order: exact color+size variant,
// then a variant matching the single selected attribute, then base stock.
// A selection that matches no variant yields 0 - an unmatched variant must
// never grant unlimited quantity.
func StockCeiling(item *models.CatalogItem, selectedSize, selectedColor string) int {
	return ceilingFor(item.Stock, item.Variants, selectedSize, selectedColor)
}

// LineCeiling resolves the ceiling for a cart line from its denormalized
// stock and variants, so quantity checks don't hit the catalog per click.
func LineCeiling(line *models.CartLine) int {
	return ceilingFor(line.Stock, line.Variants, line.SelectedSize, line.SelectedColor)
}

func ceilingFor(baseStock int, variants []models.Variant, selectedSize, selectedColor string) int {
	size := utils.NormalizeOption(selectedSize)
	color := utils.NormalizeOption(selectedColor)

	if len(variants) == 0 {
		return baseStock
	}
	if size == "" && color == "" {
		return baseStock
	}

	if size != "" && color != "" {
		for _, v := range variants {
			if utils.NormalizeOption(v.Size) == size && utils.NormalizeOption(v.Color) == color {
				return v.Quantity
			}
		}
		return 0
	}

	if size != "" {
		for _, v := range variants {
			if utils.NormalizeOption(v.Size) == size {
				return v.Quantity
			}
		}
		return 0
	}

	for _, v := range variants {
		if utils.NormalizeOption(v.Color) == color {
			return v.Quantity
		}
	}
	return 0
}
