package main

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const apiVersion = "1.0.0"

func recordSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().WithAnyAdditionalProperties()
	s.Properties = openapi3.Schemas{
		"id": openapi3.NewOneOfSchema(openapi3.NewIntegerSchema(), openapi3.NewStringSchema()).NewRef(),
	}
	return s
}

func errorSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Properties = openapi3.Schemas{"error": openapi3.NewStringSchema().NewRef()}
	s.Required = []string{"error"}
	return s
}

func jsonResponse(desc string, schema *openapi3.Schema) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(desc).WithJSONSchema(schema)
}

func jsonBody(desc string) *openapi3.RequestBodyRef {
	body := openapi3.NewRequestBody().
		WithDescription(desc).
		WithRequired(true).
		WithJSONSchema(recordSchema())
	return &openapi3.RequestBodyRef{Value: body}
}

func newOperation(id, summary, tag string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Tags = []string{tag}
	return op
}

// buildOpenAPI describes the CRUD routes of every collection.
func buildOpenAPI(collections []string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "apimocker",
			Description: "CRUD endpoints generated from a JSON data file.",
			Version:     apiVersion,
		},
		Paths: openapi3.Paths{},
	}

	for _, name := range collections {
		itemPath := "/api/" + name + "/{id}"

		list := newOperation("list_"+name, "List "+name, name)
		list.AddResponse(http.StatusOK, jsonResponse("All records", openapi3.NewArraySchema().WithItems(recordSchema())))

		create := newOperation("create_"+name, "Create a record in "+name, name)
		create.RequestBody = jsonBody("Record stored as given")
		create.AddResponse(http.StatusCreated, jsonResponse("Created record", recordSchema()))
		create.AddResponse(http.StatusBadRequest, jsonResponse("Malformed body", errorSchema()))

		get := newOperation("get_"+name, "Get a record from "+name, name)
		get.AddResponse(http.StatusOK, jsonResponse("Matched record", recordSchema()))
		get.AddResponse(http.StatusNotFound, jsonResponse("No record with this id", errorSchema()))

		replace := newOperation("replace_"+name, "Replace a record in "+name, name)
		replace.RequestBody = jsonBody("New record body; its id is taken from the path")
		replace.AddResponse(http.StatusOK, jsonResponse("Replaced record", recordSchema()))
		replace.AddResponse(http.StatusBadRequest, jsonResponse("Path id does not fit the stored id type", errorSchema()))
		replace.AddResponse(http.StatusNotFound, jsonResponse("No record with this id", errorSchema()))

		update := newOperation("update_"+name, "Merge fields into a record in "+name, name)
		update.RequestBody = jsonBody("Fields to merge")
		update.AddResponse(http.StatusOK, jsonResponse("Merged record", recordSchema()))
		update.AddResponse(http.StatusNotFound, jsonResponse("No record with this id", errorSchema()))

		del := newOperation("delete_"+name, "Delete a record from "+name, name)
		del.AddResponse(http.StatusOK, jsonResponse("Removed record", recordSchema()))
		del.AddResponse(http.StatusNotFound, jsonResponse("No record with this id", errorSchema()))

		doc.Paths["/api/"+name] = &openapi3.PathItem{Get: list, Post: create}
		doc.Paths[itemPath] = &openapi3.PathItem{
			Parameters: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
			},
			Get:    get,
			Put:    replace,
			Patch:  update,
			Delete: del,
		}
	}
	return doc
}
