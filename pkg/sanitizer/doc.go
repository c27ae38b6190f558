// Package sanitizer cleans HTML that reaches outgoing email bodies.
//
// The mailer renderer runs [Email] over markdown output when raw HTML is
// allowed in content templates, so authors can inline tables and styled
// blocks without being able to ship scripts or javascript: links.
package sanitizer
