package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddRecordsHandler handles adding/updating records in a collection.
// Request Body: a single record object or an array of records, each with an "id".
func (api *API) AddRecordsHandler(c *gin.Context) {
	name := c.Param("name")
	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	// Read the raw JSON data first
	var rawData interface{}
	if err := c.ShouldBindJSON(&rawData); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	records, result := ParseRecords(rawData)
	if result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	if err := coll.AddRecords(records); err != nil {
		SendDomainError(c, "add records", err, true)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("%d record(s) added/updated in collection '%s'", len(records), name),
		"record_count": len(records),
	})
}

// ListRecordsHandler lists records of a collection in stored order with pagination
func (api *API) ListRecordsHandler(c *gin.Context) {
	name := c.Param("name")
	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	page, pageSize, result := ValidatePagination(c)
	if result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	recordPage := coll.ListRecords(page, pageSize)
	pages := 0
	if recordPage.PageSize > 0 {
		pages = (recordPage.Total + recordPage.PageSize - 1) / recordPage.PageSize
	}

	c.JSON(http.StatusOK, gin.H{
		"records":   recordPage.Records,
		"total":     recordPage.Total,
		"page":      recordPage.Page,
		"page_size": recordPage.PageSize,
		"pages":     pages,
	})
}

// DeleteAllRecordsHandler handles the request to delete all records from a collection.
func (api *API) DeleteAllRecordsHandler(c *gin.Context) {
	name := c.Param("name")
	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	if err := coll.DeleteAllRecords(); err != nil {
		SendDomainError(c, "delete all records", err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All records deleted from collection '" + name + "'"})
}

// GetRecordHandler retrieves a specific record by ID
func (api *API) GetRecordHandler(c *gin.Context) {
	name := c.Param("name")
	recordID := c.Param("id")

	if result := ValidateRecordID(recordID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	record, err := coll.GetRecord(recordID)
	if err != nil {
		SendDomainError(c, "get record", err, false)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteRecordHandler deletes a specific record by ID
func (api *API) DeleteRecordHandler(c *gin.Context) {
	name := c.Param("name")
	recordID := c.Param("id")

	if result := ValidateRecordID(recordID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	if err := coll.DeleteRecord(recordID); err != nil {
		SendDomainError(c, "delete record", err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("Record '%s' deleted from collection '%s'", recordID, name),
		"record_id": recordID,
	})
}

// RecordViewHandler counts one view of a record (a resource being opened) and
// returns the updated record.
func (api *API) RecordViewHandler(c *gin.Context) {
	name := c.Param("name")
	recordID := c.Param("id")

	if result := ValidateRecordID(recordID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	coll, err := api.manager.GetCollection(name)
	if err != nil {
		SendDomainError(c, "get collection", err, false)
		return
	}

	record, err := coll.RecordView(recordID)
	if err != nil {
		SendDomainError(c, "record view", err, true)
		return
	}
	c.JSON(http.StatusOK, record)
}
