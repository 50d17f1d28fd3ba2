package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL read schema wired to our services.
// Mutations go through REST; this endpoint is queries only.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	stopType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stop",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"stop_id":       &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"location":      &graphql.Field{Type: geoPointType},
			"mode":          &graphql.Field{Type: graphql.String},
			"platform_code": &graphql.Field{Type: graphql.String},
			"distance":      &graphql.Field{Type: graphql.Float},
		},
	})

	lineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Line",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"designation": &graphql.Field{Type: graphql.String},
			"mode":        &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"color":       &graphql.Field{Type: graphql.String},
		},
	})

	departureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Departure",
		Fields: graphql.Fields{
			"line":      &graphql.Field{Type: lineType},
			"direction": &graphql.Field{Type: graphql.String},
			"planned":   &graphql.Field{Type: graphql.DateTime},
			"expected":  &graphql.Field{Type: graphql.DateTime},
			"platform":  &graphql.Field{Type: graphql.String},
			"cancelled": &graphql.Field{Type: graphql.Boolean},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CommuteRoute",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"name":              &graphql.Field{Type: graphql.String},
			"origin_id":         &graphql.Field{Type: graphql.String},
			"destination_id":    &graphql.Field{Type: graphql.String},
			"departure_time":    &graphql.Field{Type: graphql.String},
			"threshold_minutes": &graphql.Field{Type: graphql.Int},
			"active":            &graphql.Field{Type: graphql.Boolean},
		},
	})

	notificationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Notification",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"type":       &graphql.Field{Type: graphql.String},
			"severity":   &graphql.Field{Type: graphql.String},
			"title":      &graphql.Field{Type: graphql.String},
			"body":       &graphql.Field{Type: graphql.String},
			"read":       &graphql.Field{Type: graphql.Boolean},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"searchStops": &graphql.Field{
				Type:        graphql.NewList(stopType),
				Description: "Search stops by name prefix",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Stops.SearchByPrefix(p.Context, q, limit)
				},
			},
			"stopsNearby": &graphql.Field{
				Type:        graphql.NewList(stopType),
				Description: "Find stops near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 500.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Stops.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"stopDepartures": &graphql.Field{
				Type:        graphql.NewList(departureType),
				Description: "Realtime departures at a stop",
				Args: graphql.FieldConfigArgument{
					"stop_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					stopID := p.Args["stop_id"].(string)
					limit := p.Args["limit"].(int)
					return deps.Departures.AtStop(p.Context, stopID, limit)
				},
			},
			"myRoutes": &graphql.Field{
				Type:        graphql.NewList(routeType),
				Description: "Saved commute routes for the authenticated user",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, _ := p.Context.Value(gqlUserKey).(string)
					if userID == "" {
						return nil, nil
					}
					return deps.Routes.ListByUser(p.Context, userID)
				},
			},
			"myNotifications": &graphql.Field{
				Type:        graphql.NewList(notificationType),
				Description: "Notifications for the authenticated user",
				Args: graphql.FieldConfigArgument{
					"unread": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, _ := p.Context.Value(gqlUserKey).(string)
					if userID == "" {
						return nil, nil
					}
					unread := p.Args["unread"].(bool)
					limit := p.Args["limit"].(int)
					return deps.Notifications.List(p.Context, userID, unread, limit)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

type gqlUserCtxKey struct{}

var gqlUserKey gqlUserCtxKey

// GraphQLHandler serves the GraphQL endpoint. User-scoped fields resolve
// the bearer session when one is present; public fields work without it.
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

		ctx := c.UserContext()
		if userID := currentUser(c); userID != "" {
			ctx = contextWithGQLUser(ctx, userID)
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
