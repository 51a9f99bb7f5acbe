package client

import "encoding/json"

const compareStorageKey = "compareList"

// MaxCompare bounds the side-by-side comparison selection.
const MaxCompare = 3

type CompareProduct struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// CompareList is the bounded compare selection. Not safe for concurrent
// use.
type CompareList struct {
	storage  Storage
	products []CompareProduct
}

func NewCompareList(storage Storage) *CompareList {
	l := &CompareList{storage: storage}
	if data, err := storage.Load(compareStorageKey); err == nil && len(data) > 0 {
		var products []CompareProduct
		if err := json.Unmarshal(data, &products); err == nil {
			l.products = products
		}
	}
	return l
}

func (l *CompareList) save() {
	data, err := json.Marshal(l.products)
	if err != nil {
		return
	}
	l.storage.Save(compareStorageKey, data)
}

// Add reports whether the product was added. Adding beyond the cap or
// adding a duplicate is a no-op returning false.
func (l *CompareList) Add(product CompareProduct) bool {
	if len(l.products) >= MaxCompare {
		return false
	}
	for _, p := range l.products {
		if p.ID == product.ID {
			return false
		}
	}
	l.products = append(l.products, product)
	l.save()
	return true
}

func (l *CompareList) Remove(productID int) {
	for i, p := range l.products {
		if p.ID == productID {
			l.products = append(l.products[:i], l.products[i+1:]...)
			l.save()
			return
		}
	}
}

// Clear empties the selection and drops the storage key.
func (l *CompareList) Clear() {
	l.products = nil
	l.storage.Remove(compareStorageKey)
}

func (l *CompareList) Contains(productID int) bool {
	for _, p := range l.products {
		if p.ID == productID {
			return true
		}
	}
	return false
}

func (l *CompareList) Products() []CompareProduct {
	return append([]CompareProduct{}, l.products...)
}
