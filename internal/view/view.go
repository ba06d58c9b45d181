// Package view renders the storefront fragments a page swaps into its
// attachment points: the cart container, the order summary, the auth link
// and the cart count badge.
//
// Rendering is a pure function of State. Rendering the same State twice
// yields byte-identical output.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"wholesale/internal/models"
	"wholesale/internal/pricing"
)

const (
	LoginHref  = "/login"
	LogoutHref = "/logout"
)

// State is everything the fragments depend on.
type State struct {
	LoggedIn bool
	Email    string
	Items    []models.CartItem
	Pricing  pricing.Breakdown

	CheckoutReady  bool
	BlockedReason  string
	BlockedMessage string
}

// AuthLink is the login/logout toggle.
type AuthLink struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// Fragments are the rendered pieces of the page.
type Fragments struct {
	AuthLink       AuthLink `json:"auth_link"`
	CartCount      string   `json:"cart_count"`
	PricingVisible bool     `json:"pricing_visible"`
	CartContainer  string   `json:"cart_container"`
	OrderSummary   string   `json:"order_summary"`
}

var funcs = template.FuncMap{
	"money":   pricing.FormatCents,
	"percent": func(bp int64) string { return strconv.FormatInt(bp/100, 10) + "%" },
	"line":    func(i models.CartItem) int64 { return i.LineTotalCents() },
}

var (
	cartTmpl    = template.Must(template.New("cart").Funcs(funcs).Parse(cartTemplate))
	summaryTmpl = template.Must(template.New("summary").Funcs(funcs).Parse(summaryTemplate))
)

type cartData struct {
	State
	TierHint string
}

// Render produces the fragments for s.
func Render(s State) (*Fragments, error) {
	f := &Fragments{
		AuthLink:       AuthLink{Href: LoginHref, Label: "Login"},
		CartCount:      strconv.Itoa(s.Pricing.TotalQuantity),
		PricingVisible: s.LoggedIn,
	}
	if s.LoggedIn {
		f.AuthLink = AuthLink{Href: LogoutHref, Label: "Logout"}
	}

	var buf bytes.Buffer
	if err := cartTmpl.Execute(&buf, cartData{State: s, TierHint: tierHint(s.Pricing)}); err != nil {
		return nil, fmt.Errorf("render cart: %w", err)
	}
	f.CartContainer = buf.String()

	buf.Reset()
	if err := summaryTmpl.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("render order summary: %w", err)
	}
	f.OrderSummary = buf.String()
	return f, nil
}

func tierHint(b pricing.Breakdown) string {
	totalQuantity := b.TotalQuantity
	if totalQuantity == 0 || b.Overflow {
		return ""
	}
	next, need, ok := pricing.NextTier(totalQuantity)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Add %d more units to get %d%% off.", need, next.RateBP/100)
}

const cartTemplate = `{{if not .Items}}<p class="cart-empty">Your cart is empty.</p>{{else}}<table class="cart-table">
<thead><tr><th>Product</th>{{if .LoggedIn}}<th>Price</th>{{end}}<th>Quantity</th>{{if .LoggedIn}}<th>Total</th>{{end}}<th></th></tr></thead>
<tbody>
{{range .Items}}<tr data-id="{{.ID}}">
<td>{{.Name}}</td>{{if $.LoggedIn}}<td>{{money .PriceCents}}</td>{{end}}
<td><button class="qty-btn" data-action="decrease" data-id="{{.ID}}">-</button><span class="qty">{{.Quantity}}</span><button class="qty-btn" data-action="increase" data-id="{{.ID}}">+</button></td>{{if $.LoggedIn}}<td>{{money (line .)}}</td>{{end}}
<td><button class="remove-btn" data-id="{{.ID}}">Remove</button></td>
</tr>
{{end}}</tbody>
</table>
{{if .LoggedIn}}{{if .Pricing.Overflow}}<p class="cart-overflow">This order is too large to price. Please reduce quantities.</p>{{else}}<div class="cart-totals">
<p>Total quantity: <span id="totalQuantity">{{.Pricing.TotalQuantity}}</span></p>
<p>Subtotal: <span id="subtotal">{{money .Pricing.SubtotalCents}}</span></p>
<p>Discount ({{percent .Pricing.DiscountRateBP}}): <span id="discount">-{{money .Pricing.DiscountCents}}</span></p>
<p class="grand-total">Total: <span id="grandTotal">{{money .Pricing.GrandTotalCents}}</span></p>
{{if .TierHint}}<p class="tier-hint">{{.TierHint}}</p>{{end}}</div>{{end}}{{end}}{{end}}`

const summaryTemplate = `{{if not .CheckoutReady}}<p class="checkout-blocked" data-reason="{{.BlockedReason}}">{{.BlockedMessage}}</p>{{else}}<ul class="order-items">
{{range .Items}}<li data-id="{{.ID}}">{{.Name}} &times; {{.Quantity}} = {{money (line .)}}</li>
{{end}}</ul>
<dl class="order-totals">
<dt>Total quantity</dt><dd>{{.Pricing.TotalQuantity}}</dd>
<dt>Subtotal</dt><dd>{{money .Pricing.SubtotalCents}}</dd>
<dt>Discount ({{percent .Pricing.DiscountRateBP}})</dt><dd>-{{money .Pricing.DiscountCents}}</dd>
<dt>Grand total</dt><dd>{{money .Pricing.GrandTotalCents}}</dd>
</dl>{{end}}`
