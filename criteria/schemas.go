package criteria

// Declared extract schemas. These column lists are fixed contracts with the
// upstream export jobs; changing a name breaks interoperability.

// depositDetailColumns is the term-deposit (CKH) detail extract layout used by
// the rate criterion.
var depositDetailColumns = []string{
	"BRCD", "DEPTCD", "CUST_TYPE", "NMLOC", "CUSTSEQ", "BIRTH_DAY",
	"IDXACNO", "SCHM_NAME", "TERM_DAYS", "GL_SUB", "CCYCD",
	"CURBAL_NT", "CURBAL_VN", "OPNDT_FIRST", "OPNDT_EFFECT",
	"MATDT", "LS_GHISO", "LS_CONG_BO", "PROMO_CD", "KH_VIP",
	"CIF_OPNDT", "DP_MTHS", "DP_DAYS", "PROMO_NM", "PHANKHUC_KH",
}

// rankingColumns is the shared CKH/KKH layout used by the balance ranking
// criterion.
var rankingColumns = []string{
	"BRCD", "DEPTCD", "CUST_TYPE", "CUSTSEQ", "NMLOC", "BIRTH_DAY",
	"IDXACNO", "SCHM_NAME", "TERM_DAYS", "GL_SUB", "CCYCD",
	"CURBAL_NT", "CURBAL_VN", "OPNDT_FIRST", "OPNDT_EFFECT",
	"MATDT", "LS_GHISO", "LS_CONG_BO", "PROMO_CD", "KH_VIP", "CIF_OPNDT",
}

// ftpColumns is the funds-transfer-pricing extract subset.
var ftpColumns = []string{"IDXACNO", "LS_FTP"}

// withdrawalColumns are the transaction extract columns the withdrawal
// criterion depends on. The extract carries more; they pass through untouched.
var withdrawalColumns = []string{
	"NGAY_HACH_TOAN", "ACCT_OPN_DATE", "PART_CLOSE_AMT", "SOL_ID",
}

// staffAccountColumns is the demand-deposit subset inspected by the staff
// account criterion.
var staffAccountColumns = []string{
	"BRCD", "DEPTCD", "CUST_TYPE", "CUSTSEQ", "NMLOC", "BIRTH_DAY",
	"IDXACNO", "SCHM_NAME", "CCYCD", "CURBAL_VN",
	"OPNDT_FIRST", "OPNDT_EFFECT",
}

// cardMappingColumns is the card mapping extract layout, lower-cased as
// shipped.
var cardMappingColumns = []string{
	"brcd", "semaacount", "cardnbr", "token", "relation", "uploaddt",
	"odaccount", "acctcd", "dracctno", "drratio", "adduser", "updtuser",
	"expiredate", "custnm", "cif", "xpcode", "xpcodedt", "remark", "oldxpcode",
}

// customsColumns are the mandatory customs declaration date columns.
var customsColumns = []string{
	"DECLARATION_DUE_DATE", "DECLARATION_RECEIVED_DATE",
}

// remittanceColumns are the mandatory remittance transaction columns.
var remittanceColumns = []string{
	"TRAN_DATE", "PART_NAME", "PURPOSE_OF_REMITTANCE", "TRAN_ID", "QUY_DOI_USD",
}
