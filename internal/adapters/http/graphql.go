package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/mikelzubi/mimapa/internal/core/ports"
)

// buildSchema creates the GraphQL schema wired to our services. The
// GraphQL surface is read-only; mutations go through REST so the
// workflow semantics (visit side effects, slot handoff) stay in one
// place.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"place":      &graphql.Field{Type: graphql.String},
			"lat":        &graphql.Field{Type: graphql.Float},
			"lon":        &graphql.Field{Type: graphql.Float},
			"owner":      &graphql.Field{Type: graphql.String},
			"image_url":  &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
			"updated_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	nearbyMarkerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyMarker",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"place":      &graphql.Field{Type: graphql.String},
			"lat":        &graphql.Field{Type: graphql.Float},
			"lon":        &graphql.Field{Type: graphql.Float},
			"owner":      &graphql.Field{Type: graphql.String},
			"distance_m": &graphql.Field{Type: graphql.Float},
		},
	})

	visitType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Visit",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"visited":   &graphql.Field{Type: graphql.String},
			"visitor":   &graphql.Field{Type: graphql.String},
			"timestamp": &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markers": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "List markers, filtered by owner and/or place substring",
				Args: graphql.FieldConfigArgument{
					"owner":  &graphql.ArgumentConfig{Type: graphql.String},
					"place":  &graphql.ArgumentConfig{Type: graphql.String},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, _ := p.Args["owner"].(string)
					place, _ := p.Args["place"].(string)
					markers, _, err := deps.Markers.List(p.Context, ports.MarkerFilter{
						Owner:  owner,
						Place:  place,
						Offset: p.Args["offset"].(int),
						Limit:  p.Args["limit"].(int),
					})
					return markers, err
				},
			},
			"marker": &graphql.Field{
				Type:        markerType,
				Description: "Get a marker by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Markers.View(p.Context, p.Args["id"].(string))
				},
			},
			"markersNearby": &graphql.Field{
				Type:        graphql.NewList(nearbyMarkerType),
				Description: "Find markers near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					nearby, err := deps.Markers.Nearby(p.Context,
						p.Args["lat"].(float64),
						p.Args["lon"].(float64),
						p.Args["radius"].(float64),
						p.Args["limit"].(int),
					)
					if err != nil {
						return nil, err
					}
					// Flatten the embedded marker for the resolver.
					var result []map[string]interface{}
					for _, n := range nearby {
						result = append(result, map[string]interface{}{
							"id":         n.ID,
							"place":      n.Place,
							"lat":        n.Lat,
							"lon":        n.Lon,
							"owner":      n.Owner,
							"distance_m": n.DistanceM,
						})
					}
					return result, nil
				},
			},
			"visits": &graphql.Field{
				Type:        graphql.NewList(visitType),
				Description: "Visits received by an owner, oldest first",
				Args: graphql.FieldConfigArgument{
					"visited": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Visits.ListByVisited(p.Context, p.Args["visited"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
