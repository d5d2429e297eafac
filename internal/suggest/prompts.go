package suggest

import (
	"strings"
	"text/template"
)

var pricePrompt = template.Must(template.New("price").Parse(
	`You are a ride pricing expert for Hyderabad, India. Given the following ride details, predict a suitable price for the ride in INR and explain your reasoning.

Origin: {{.Origin}}
Destination: {{.Destination}}
Distance: {{printf "%.1f" .DistanceMiles}} miles
Time of Day: {{.TimeOfDay}}
Demand Level: {{.DemandLevel}}

Consider typical ride prices, demand, traffic conditions (like the Gachibowli flyover rush hour), and other relevant factors specifically for Hyderabad.

Your prediction should include both the predicted price and a brief explanation of your reasoning.`))

var profilePrompt = template.Must(template.New("profile").Parse(
	`You are an AI assistant specializing in generating user profiles for a ride-sharing application.

Given the following information about a user, generate a short, engaging, and positive profile summary highlighting their credibility within the community.

User Name: {{.UserName}}
Ride History: {{.RideHistory}}
Average Rating: {{.AverageRating}}

Profile Summary:`))

func render(t *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
