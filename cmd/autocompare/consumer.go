package main

import "time"

// Consumer is the sample document type compared by the demo
type Consumer struct {
	FirstName   string             `yaml:"firstName"`
	LastName    string             `yaml:"lastName"`
	Age         int                `yaml:"age"`
	DateOfBirth time.Time          `yaml:"dateOfBirth"`
	Address     *Address           `yaml:"address"`
	ParentList  []string           `yaml:"parentList"`
	Attributes  map[string]string  `yaml:"attributes"`
	Accounts    map[string]Account `yaml:"accounts"`
	Orders      []*Order           `yaml:"orders" compare:"key=ID"`
}

// Address is nested in Consumer
type Address struct {
	AddressLine string   `yaml:"addressLine"`
	City        string   `yaml:"city"`
	Zip         string   `yaml:"zip"`
	SomeList    []string `yaml:"someList"`
}

// Account is a map value compared member by member
type Account struct {
	Balance float64 `yaml:"balance"`
	Active  bool    `yaml:"active"`
}

// Order is matched by ID across versions of a consumer. Orders without an ID
// have not been saved yet and are always reported as new
type Order struct {
	ID    int     `yaml:"id"`
	Item  string  `yaml:"item"`
	Total float64 `yaml:"total"`
}

func loadConsumer() *Consumer {
	return &Consumer{
		FirstName:   "Anand",
		LastName:    "Patel",
		Age:         2,
		DateOfBirth: time.Date(2022, time.March, 14, 0, 0, 0, 0, time.UTC),
		Address: &Address{
			City:        "Charlotte",
			AddressLine: "10017 Paxton Run Road",
			Zip:         "28277",
		},
		Orders: []*Order{
			{ID: 1, Item: "crayons", Total: 4.5},
		},
	}
}
