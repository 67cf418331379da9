package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages maps "<field>.<tag>" to the text reported to clients.
var messages = map[string]string{
	"name.required":       "Name is required",
	"price.required":      "Price is required",
	"description.min":     "Description must be at least 5 characters long",
	"imageUrl.required":   "Invalid image URL",
	"imageUrl.url":        "Invalid image URL",
	"firstName.required":  "First name is required",
	"lastName.required":   "Last name is required",
	"address1.required":   "Address 1 is required",
	"city.required":       "City is required",
	"state.required":      "State is required",
	"zip.required":        "Zip is required",
	"country.required":    "Country is required",
	"phone.required":      "Phone is required",
	"email.required":      "Email is required",
	"orderTotal.required": "Order total is required",
	"items.required":      "Items are required",
	"items.min":           "Items are required",
	"productId.required":  "Item productId is required",
	"quantity.gte":        "Item quantity must be at least 1",
}

// describe joins the client messages for every failed constraint.
func describe(errs validator.ValidationErrors) string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out = append(out, msg)
	}
	return strings.Join(out, "; ")
}
