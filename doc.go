// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package sheets2json publishes Google Sheets worksheets as JSON files.

sheets2json can be used from the command line but is really intended to be run from a cron job to keep a
JSON copy of a spreadsheet (e.g. the data file for a static site) in sync with the spreadsheet. The JSON
file is only committed when its content has changed, so repeated runs against an unchanged spreadsheet
leave the repository untouched.

sheets2json supports the following commands:

  - publish, to convert a worksheet to JSON and publish it to one or more repository branches
  - get, to download a worksheet as a local JSON file
  - compare, to show the differences between a worksheet and the published JSON files
  - authorise, to authorise access to Google Sheets for an OAuth client
  - version
*/
package sheets2json
