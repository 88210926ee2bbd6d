package main

import (
	_ "github.com/shebbar27/flow-log-parser/modules/exporters/csv"
	_ "github.com/shebbar27/flow-log-parser/modules/exporters/ipfix"
	_ "github.com/shebbar27/flow-log-parser/modules/exporters/null"
	_ "github.com/shebbar27/flow-log-parser/modules/exporters/parquet"
	_ "github.com/shebbar27/flow-log-parser/modules/exporters/text"
)
