package linkedin

import (
	"fmt"
	"net/url"
	"strconv"
)

// CardsPerPage is how many cards the guest search endpoint returns per request.
const CardsPerPage = 25

type SearchParameters struct {
	Keywords string
	Location string
	Start    int
}

func (p SearchParameters) Validate() error {
	if p.Keywords == "" {
		return fmt.Errorf("keywords must not be empty")
	}
	if p.Start < 0 {
		return fmt.Errorf("start must not be negative")
	}
	return nil
}

func (p SearchParameters) ToUrlParams() url.Values {
	params := url.Values{}
	params.Set("keywords", p.Keywords)
	if p.Location != "" {
		params.Set("location", p.Location)
	}
	params.Set("start", strconv.Itoa(p.Start))
	return params
}
