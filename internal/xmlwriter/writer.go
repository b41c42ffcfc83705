// =============================================================================
// Wide-to-Long Normalizer - XML Writer Module
// =============================================================================
//
// This module renders normalized records as an XML document, grouped by
// factory, for systems that import XML rather than CSV.
//
// XML STRUCTURE:
//   The generated XML follows this nesting pattern:
//
//   <normalized>                                  <!-- Root element -->
//     <factory name="WerkA">                      <!-- One per factory -->
//       <record n="1" year="2025" month="1">      <!-- Record with index -->
//         <ytd_value>1250000</ytd_value>
//         <month_value>1250000</month_value>     <!-- When monthly values are given -->
//       </record>
//       <record n="2" year="2025" month="2">
//         <ytd_value>2500000</ytd_value>
//       </record>
//     </factory>
//     <factory name="WerkB">
//       <record n="3" year="2025" month="1">     <!-- Note: global numbering continues -->
//         <ytd_value>10</ytd_value>
//       </record>
//     </factory>
//   </normalized>
//
// Factories appear in the order of their first record; records keep their
// input order within a factory.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

// Element names of the generated document.
const (
	RootElement       = "normalized"
	FactoryElement    = "factory"
	RecordElement     = "record"
	YTDValueElement   = "ytd_value"
	MonthValueElement = "month_value"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootAttributes are additional attributes for the root element, written
	// in key order.
	// Example: {"xmlns": "http://example.com/schema"}
	RootAttributes map[string]string

	// RecordNumberingGlobal determines if record numbering is global.
	// If true: records are numbered 1, 2, 3, 4... across all factories.
	// If false: numbering restarts at 1 for each factory.
	// Default: true
	RecordNumberingGlobal bool

	// RecordIndexAttribute is the attribute name for the record index.
	// Default: "n"
	RecordIndexAttribute string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootAttributes:        make(map[string]string),
		RecordNumberingGlobal: true,
		RecordIndexAttribute:  "n",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates an XML document from the records with default options.
//
// PARAMETERS:
//   - records: The normalized records.
//   - monthly: The monthly values. May be nil; a record without a matching
//     monthly value gets no month_value element.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if generation fails.
func Generate(records []types.NormalizedRecord, monthly []types.MonthlyValue) ([]byte, error) {
	return GenerateWithOptions(records, monthly, DefaultGenerateOptions())
}

// GenerateWithOptions creates an XML document using the given options.
func GenerateWithOptions(records []types.NormalizedRecord, monthly []types.MonthlyValue, options GenerateOptions) ([]byte, error) {
	if options.RecordIndexAttribute == "" {
		return nil, fmt.Errorf("record index attribute must not be empty")
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	doc := buildDocument(records, monthly, options)
	writeElement(&buffer, doc, options.Indent, 0)

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

type recordKey struct {
	factory     string
	year, month int
}

// buildDocument groups the records by factory and numbers them.
func buildDocument(records []types.NormalizedRecord, monthly []types.MonthlyValue, options GenerateOptions) XMLElement {
	doc := XMLElement{XMLName: xml.Name{Local: RootElement}}

	keys := make([]string, 0, len(options.RootAttributes))
	for key := range options.RootAttributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		doc.Attributes = append(doc.Attributes, attr(key, options.RootAttributes[key]))
	}

	monthValues := make(map[recordKey]float64, len(monthly))
	for _, m := range monthly {
		monthValues[recordKey{m.Factory, m.Year, m.Month}] = m.MonthValue
	}

	// Index of each factory element in doc.Children.
	factories := make(map[string]int)
	globalIndex := 1

	for _, r := range records {
		pos, ok := factories[r.Factory]
		if !ok {
			pos = len(doc.Children)
			factories[r.Factory] = pos
			doc.Children = append(doc.Children, XMLElement{
				XMLName:    xml.Name{Local: FactoryElement},
				Attributes: []xml.Attr{attr("name", r.Factory)},
			})
		}
		factory := &doc.Children[pos]

		index := len(factory.Children) + 1
		if options.RecordNumberingGlobal {
			index = globalIndex
			globalIndex++
		}

		factory.Children = append(factory.Children, buildRecordElement(r, monthValues, index, options))
	}

	return doc
}

// buildRecordElement constructs one record element.
//
// STRUCTURE:
//   <record n="1" year="2025" month="1">
//     <ytd_value>1250000</ytd_value>
//     <month_value>1250000</month_value>
//   </record>
func buildRecordElement(r types.NormalizedRecord, monthValues map[recordKey]float64, index int, options GenerateOptions) XMLElement {
	element := XMLElement{
		XMLName: xml.Name{Local: RecordElement},
		Attributes: []xml.Attr{
			attr(options.RecordIndexAttribute, strconv.Itoa(index)),
			attr("year", strconv.Itoa(r.Year)),
			attr("month", strconv.Itoa(r.Month)),
		},
		Children: []XMLElement{createSimpleElement(YTDValueElement, formatFloat(r.YTDValue))},
	}

	if v, ok := monthValues[recordKey{r.Factory, r.Year, r.Month}]; ok {
		element.Children = append(element.Children, createSimpleElement(MonthValueElement, formatFloat(v)))
	}

	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	buffer.WriteString(strings.Repeat(indent, level))

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)
	for _, a := range element.Attributes {
		fmt.Fprintf(buffer, " %s=\"%s\"", a.Name.Local, escapeXML(a.Value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		buffer.WriteString(strings.Repeat(indent, level))
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// =============================================================================
// XSD GENERATION
// =============================================================================

// GenerateXSD returns an XSD schema describing the documents produced by
// GenerateWithOptions with the same options. Only the index attribute name
// changes the schema.
func GenerateXSD(options GenerateOptions) ([]byte, error) {
	if options.RecordIndexAttribute == "" {
		return nil, fmt.Errorf("record index attribute must not be empty")
	}
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="%[1]s">
    <xs:complexType>
      <xs:sequence>
        <xs:element ref="%[2]s" minOccurs="0" maxOccurs="unbounded"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>

  <xs:element name="%[2]s">
    <xs:complexType>
      <xs:sequence>
        <xs:element ref="%[3]s" minOccurs="1" maxOccurs="unbounded"/>
      </xs:sequence>
      <xs:attribute name="name" type="xs:string" use="required"/>
    </xs:complexType>
  </xs:element>

  <xs:element name="%[3]s">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="%[4]s" type="xs:decimal"/>
        <xs:element name="%[5]s" type="xs:decimal" minOccurs="0"/>
      </xs:sequence>
      <xs:attribute name="%[6]s" type="xs:positiveInteger" use="required"/>
      <xs:attribute name="year" type="xs:integer" use="required"/>
      <xs:attribute name="month" use="required">
        <xs:simpleType>
          <xs:restriction base="xs:integer">
            <xs:minInclusive value="1"/>
            <xs:maxInclusive value="12"/>
          </xs:restriction>
        </xs:simpleType>
      </xs:attribute>
    </xs:complexType>
  </xs:element>
</xs:schema>
`, RootElement, FactoryElement, RecordElement, YTDValueElement, MonthValueElement, options.RecordIndexAttribute)), nil
}
