// Package farmdata loads per-farm batch exports and prepares monthly crop
// price series from them.
//
// Column headers are normalised once, at load time, through a fixed table
// of known spellings (CanonicalName). Columns outside the table pass through
// under their original name and end up in RawRecord.Attributes.
//
// # Loading
//
//	ds, err := farmdata.Load("updated_farm_a_data.csv") // or .xlsx
//	if err != nil {
//	    return err
//	}
//
// Rows with a missing or unparseable HarvestDate are dropped and counted in
// Dataset.Dropped.
//
// # Preparing a Series
//
//	series := farmdata.PrepareSeries(ds, "tomato")
//	if series.IsEmpty() {
//	    // crop absent or no ModalPrice column
//	}
package farmdata
