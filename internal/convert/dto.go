// Package convert maps heterogeneous backend DTO shapes into canonical
// domain records.
//
// The backend returns the same entity with different casing and field names
// across endpoints, and list responses arrive either as a bare array or
// inside an envelope. Each entity has exactly one normalization function,
// total over all observed shapes; an unrecognized shape maps to the zero
// canonical value, never to half-filled fields.
package convert

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jeanogram/storefront-cli/internal/model"
)

// Envelope is the common response wrapper: {statusCode, message, data}.
// Data may itself be a bare array or an {items: [...]} page.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// Message extracts the server-supplied message from a response body,
// accepting both message and Message spellings. Returns "" when absent.
func Message(body []byte) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	for _, k := range []string{"message", "Message", "error", "Error"} {
		if raw, ok := m[k]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	return ""
}

// Items extracts the list of raw entity records from a response body.
// Accepted shapes: [...], {data:[...]}, {data:{items:[...]}}, {items:[...]},
// with data/Data and items/Items casing variants. Anything else yields nil,
// which the list normalizers pass through so callers can tell "no collection
// returned" apart from an empty collection.
func Items(body []byte) []json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if body[0] == '[' {
		var arr []json.RawMessage
		if json.Unmarshal(body, &arr) == nil {
			return arr
		}
		return nil
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(body, &m) != nil {
		return nil
	}
	for _, k := range []string{"data", "Data"} {
		if raw, ok := m[k]; ok {
			if arr := Items(raw); arr != nil {
				return arr
			}
		}
	}
	for _, k := range []string{"items", "Items"} {
		if raw, ok := m[k]; ok {
			var arr []json.RawMessage
			if json.Unmarshal(raw, &arr) == nil {
				return arr
			}
		}
	}
	return nil
}

// Record extracts a single entity object from a response body, unwrapping
// one level of {data: {...}} when present.
func Record(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(body, &m) != nil {
		return body
	}
	for _, k := range []string{"data", "Data"} {
		if raw, ok := m[k]; ok {
			inner := bytes.TrimSpace(raw)
			if len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') {
				return inner
			}
		}
	}
	return body
}

// dto is a loosely-typed record with casing-tolerant accessors.
type dto map[string]any

func asDTO(raw json.RawMessage) dto {
	var m map[string]any
	if json.Unmarshal(raw, &m) != nil {
		return nil
	}
	return m
}

// get returns the first present key, trying each spelling as given.
func (d dto) get(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := d[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (d dto) str(keys ...string) string {
	v, ok := d.get(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func (d dto) num(keys ...string) float64 {
	v, ok := d.get(keys...)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func (d dto) integer(keys ...string) int64 { return int64(d.num(keys...)) }

func (d dto) boolean(keys ...string) bool {
	v, ok := d.get(keys...)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (d dto) strings(keys ...string) []string {
	v, ok := d.get(keys...)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (d dto) timestamp(keys ...string) time.Time {
	s := d.str(keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// statusByEnum maps the backend's numeric order-status enum.
var statusByEnum = map[int]model.OrderStatus{
	0: model.StatusPending,
	1: model.StatusProcessing,
	2: model.StatusPaid,
	3: model.StatusShipped,
	4: model.StatusDelivered,
	5: model.StatusCancelled,
}

var statusByName = map[string]model.OrderStatus{
	"pending":    model.StatusPending,
	"processing": model.StatusProcessing,
	"paid":       model.StatusPaid,
	"shipped":    model.StatusShipped,
	"delivered":  model.StatusDelivered,
	"cancelled":  model.StatusCancelled,
}

// Status normalizes an order status sent as a string, a number, or a
// wrapper object ({value: n} or {name: s}). Unrecognized input maps to
// model.StatusUnknown.
func Status(v any) model.OrderStatus {
	switch t := v.(type) {
	case nil:
		return model.StatusUnknown
	case float64:
		if s, ok := statusByEnum[int(t)]; ok {
			return s
		}
	case int:
		if s, ok := statusByEnum[t]; ok {
			return s
		}
	case string:
		if s, ok := statusByName[strings.ToLower(t)]; ok {
			return s
		}
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return Status(inner)
		}
		if inner, ok := t["name"]; ok {
			return Status(inner)
		}
	}
	return model.StatusUnknown
}

// Product normalizes one product record.
func Product(raw json.RawMessage) model.Product {
	d := asDTO(raw)
	if d == nil {
		return model.Product{}
	}
	images := d.strings("images", "Images")
	if len(images) == 0 {
		if u := d.str("mainImageUrl", "MainImageUrl", "imageUrl", "ImageUrl"); u != "" {
			images = []string{u}
		}
	}
	return model.Product{
		ID:           d.integer("id", "Id", "ID", "productId", "ProductId"),
		Name:         d.str("name", "Name", "productName", "ProductName"),
		Description:  d.str("description", "Description"),
		Price:        d.num("price", "Price"),
		StockCount:   int(d.integer("stockCount", "StockCount", "stock_count", "stock")),
		Images:       images,
		CategoryName: d.str("categoryName", "CategoryName", "category"),
		IsActive:     d.boolean("isActive", "IsActive", "active"),
	}
}

// Products normalizes a product list response.
func Products(body []byte) []model.Product {
	raws := Items(body)
	if raws == nil {
		return nil
	}
	out := make([]model.Product, 0, len(raws))
	for _, r := range raws {
		out = append(out, Product(r))
	}
	return out
}

// CartItem normalizes one cart line.
func CartItem(raw json.RawMessage) model.CartItem {
	d := asDTO(raw)
	if d == nil {
		return model.CartItem{}
	}
	return model.CartItem{
		ItemID:    d.integer("itemId", "ItemId", "cartItemId", "CartItemId", "id", "Id"),
		ProductID: d.integer("productId", "ProductId", "ProductID"),
		Name:      d.str("productName", "ProductName", "name", "Name"),
		Price:     d.num("price", "Price", "unitPrice", "UnitPrice"),
		Quantity:  int(d.integer("quantity", "Quantity", "qty")),
	}
}

// Cart normalizes a full cart response.
func Cart(body []byte) []model.CartItem {
	raws := Items(body)
	if raws == nil {
		return nil
	}
	out := make([]model.CartItem, 0, len(raws))
	for _, r := range raws {
		out = append(out, CartItem(r))
	}
	return out
}

// WishlistItem normalizes one wishlist member; the backend's productId
// becomes the member key.
func WishlistItem(raw json.RawMessage) model.WishlistItem {
	d := asDTO(raw)
	if d == nil {
		return model.WishlistItem{}
	}
	return model.WishlistItem{
		ProductID: d.integer("productId", "ProductId", "id", "Id"),
		Name:      d.str("name", "Name", "productName", "ProductName"),
		Price:     d.num("price", "Price"),
		ImageURL:  d.str("mainImageUrl", "MainImageUrl", "imageUrl", "ImageUrl"),
	}
}

// Wishlist normalizes a wishlist response.
func Wishlist(body []byte) []model.WishlistItem {
	raws := Items(body)
	if raws == nil {
		return nil
	}
	out := make([]model.WishlistItem, 0, len(raws))
	for _, r := range raws {
		out = append(out, WishlistItem(r))
	}
	return out
}

// Address normalizes the shipping address block.
func Address(v any) *model.Address {
	d, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	dd := dto(d)
	return &model.Address{
		FullName:     dd.str("fullName", "FullName", "name"),
		AddressLine1: dd.str("addressLine1", "AddressLine1", "address"),
		City:         dd.str("city", "City"),
		State:        dd.str("state", "State"),
		PostalCode:   dd.str("postalCode", "PostalCode", "pincode"),
		Country:      dd.str("country", "Country"),
		PhoneNumber:  dd.str("phoneNumber", "PhoneNumber", "phone"),
	}
}

// OrderItem normalizes one order line.
func OrderItem(v any) model.OrderItem {
	m, ok := v.(map[string]any)
	if !ok {
		return model.OrderItem{}
	}
	d := dto(m)
	return model.OrderItem{
		ProductID: d.integer("productId", "ProductId", "ProductID", "id"),
		Name:      d.str("productName", "ProductName", "name", "Name", "title"),
		Images:    d.strings("images", "Images"),
		Quantity:  int(d.integer("quantity", "Quantity", "qty")),
		Price:     d.num("price", "Price", "unitPrice", "amount"),
	}
}

// Order normalizes one order record.
func Order(raw json.RawMessage) model.Order {
	d := asDTO(raw)
	if d == nil {
		return model.Order{}
	}

	var items []model.OrderItem
	if v, ok := d.get("items", "Items", "cart", "orderItems"); ok {
		if arr, ok := v.([]any); ok {
			items = make([]model.OrderItem, 0, len(arr))
			for _, e := range arr {
				items = append(items, OrderItem(e))
			}
		}
	}

	var addr *model.Address
	if v, ok := d.get("address", "Address", "shipping"); ok {
		addr = Address(v)
	}

	name := d.str("name", "Name", "customerName", "CustomerName")
	if name == "" && addr != nil {
		name = addr.FullName
	}

	rawStatus, _ := d.get("orderStatus", "OrderStatus", "order_state", "order_status", "status", "Status", "statusId")

	return model.Order{
		ID:           d.integer("id", "Id", "orderId", "OrderId"),
		UserID:       d.str("userId", "UserId", "UserID"),
		CustomerName: name,
		TotalAmount:  d.num("totalAmount", "TotalAmount", "total", "amount"),
		Status:       Status(rawStatus),
		CreatedOn:    d.timestamp("createdOn", "CreatedOn", "createdAt", "created_at", "placed_at"),
		Items:        items,
		Address:      addr,
	}
}

// Orders normalizes an order list response.
func Orders(body []byte) []model.Order {
	raws := Items(body)
	if raws == nil {
		return nil
	}
	out := make([]model.Order, 0, len(raws))
	for _, r := range raws {
		out = append(out, Order(r))
	}
	return out
}

// Client normalizes one account record for the admin console.
func Client(raw json.RawMessage) model.Client {
	d := asDTO(raw)
	if d == nil {
		return model.Client{}
	}
	id := d.str("id", "Id", "ID", "userId", "UserId")
	return model.Client{
		ID:        id,
		Name:      d.str("name", "Name", "fullName", "FullName", "userName", "UserName"),
		Email:     d.str("email", "Email"),
		Blocked:   d.boolean("blocked", "Blocked", "isBlocked", "IsBlocked"),
		CreatedOn: d.timestamp("createdOn", "CreatedOn", "createdAt", "created_at"),
	}
}

// Clients normalizes an account list response.
func Clients(body []byte) []model.Client {
	raws := Items(body)
	if raws == nil {
		return nil
	}
	out := make([]model.Client, 0, len(raws))
	for _, r := range raws {
		out = append(out, Client(r))
	}
	return out
}
