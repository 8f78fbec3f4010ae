package templates

// Per-publisher stylesheets appended to the base reader CSS. All sizes are
// in points: e-ink renderers handle pt more predictably than px.

const stratecheryCSS = `
body { font-family: 'Bookerly', Georgia, serif; font-size: 12pt; line-height: 1.7; }
h1 { font-size: 22pt; margin-bottom: 0.3in; text-align: center; line-height: 1.2; }
h2 { font-size: 18pt; margin-top: 0.3in; margin-bottom: 0.2in; line-height: 1.2; }
h3 { font-size: 16pt; margin-top: 0.2in; margin-bottom: 0.1in; }
p { margin: 0.8em 0; text-indent: 0.2in; text-align: justify; }
h1 + p, h2 + p, h3 + p, .article-info + p, blockquote p, li p, .date + p { text-indent: 0; }
blockquote { margin: 1em 1em; font-style: italic; border-left: 2px solid #666; padding-left: 0.5em; }
blockquote p { text-indent: 0; }
img { max-width: 95%; height: auto !important; margin: 0.3in auto; display: block; }
.article-info { font-style: italic; text-align: center; margin-bottom: 0.3in; font-size: 12pt; }
a { color: #000; text-decoration: underline; }
.footnote { font-size: 10pt; color: #666; margin-top: 0.1in; line-height: 1.4; }
.footnote p { text-indent: 0; }
.date { text-align: center; font-style: italic; color: #666; margin-bottom: 0.2in; font-size: 12pt; }
.figure { margin: 1em 0; text-align: center; page-break-inside: avoid; }
.image-caption { font-size: 10pt; color: #666; font-style: italic; text-align: center; margin-top: 0.5em; }
.newsletter-image { max-width: 95%; height: auto !important; margin: 1em auto; display: block; }
table { width: 95%; margin: 1em auto; border-collapse: collapse; }
th, td { padding: 0.5em; border: 1px solid #ddd; font-size: 11pt; }
`

const substackCSS = `
body { font-family: 'Bookerly', Georgia, serif; font-size: 12pt; line-height: 1.6; margin: 0.5in; }
h1 { font-size: 22pt; margin-bottom: 0.3in; text-align: center; line-height: 1.2; }
h2 { font-size: 18pt; margin-top: 0.3in; margin-bottom: 0.2in; line-height: 1.2; }
h3 { font-size: 16pt; margin-top: 0.3in; margin-bottom: 0.15in; }
.subtitle, .byline { font-style: italic; margin-bottom: 0.2in; font-size: 14pt; text-align: center; }
p { margin: 0.7em 0; text-indent: 0.2in; text-align: justify; }
h1 + p, h2 + p, h3 + p, h4 + p, h5 + p, h6 + p, .byline + p, .subtitle + p { text-indent: 0; }
blockquote { margin: 1em 1em; padding-left: 0.5em; border-left: 2px solid #666; font-style: italic; }
blockquote p { text-indent: 0; }
img { max-width: 95%; height: auto !important; margin: 1em auto; display: block; }
a { color: #000; text-decoration: underline; }
.kindle-header { margin-bottom: 1em; }
.kindle-content { margin-top: 0.5em; }
table { width: 95%; margin: 1em auto; border-collapse: collapse; }
th, td { padding: 0.5em; border: 1px solid #ddd; font-size: 11pt; }
.figure { margin: 1em 0; page-break-inside: avoid; }
figcaption, .image-caption { font-size: 10pt; color: #666; text-align: center; font-style: italic; margin-top: 0.3em; }
`

const axiosCSS = `
body { font-family: 'Bookerly', Georgia, serif; font-size: 12pt; line-height: 1.5; }
h1 { font-size: 22pt; margin-bottom: 0.2in; text-align: center; line-height: 1.2; }
h2 { font-size: 18pt; margin-top: 0.3in; margin-bottom: 0.1in; line-height: 1.2; border-bottom: 1px solid #ccc; padding-bottom: 0.05in; }
h3 { font-size: 16pt; margin-top: 0.2in; margin-bottom: 0.1in; font-weight: bold; }
.bullet-point { font-weight: bold; color: #444; }
p { margin: 0.6em 0; text-indent: 0; }
ul, ol { margin-top: 0.1in; margin-bottom: 0.2in; }
li { margin-bottom: 0.1in; }
img { max-width: 95%; height: auto !important; margin: 0.2in auto; display: block; }
.byline { font-style: italic; text-align: center; margin-bottom: 0.2in; font-size: 11pt; color: #555; }
.axios-section { margin-top: 0.3in; margin-bottom: 0.3in; }
.axios-highlight { background-color: #f2f2f2; padding: 0.1in; margin: 0.1in 0; border-left: 3px solid #888; }
.quote { font-style: italic; margin: 0.2in 0.3in; padding-left: 0.1in; border-left: 2px solid #888; }
`

const bulletinMediaCSS = `
body { font-family: 'Bookerly', Georgia, serif; font-size: 12pt; line-height: 1.5; }
h1 { font-size: 22pt; margin-bottom: 0.3in; text-align: center; line-height: 1.2; }
h2 { font-size: 18pt; margin-top: 0.3in; margin-bottom: 0.1in; border-bottom: 1px solid #ccc; padding-bottom: 5px; }
h3 { font-size: 16pt; font-weight: bold; margin-top: 0.2in; margin-bottom: 0.1in; }
p { margin: 0.7em 0; text-indent: 0; }
.bulletin-section { margin-bottom: 0.3in; }
.bulletin-headline { font-weight: bold; margin-bottom: 0.1in; }
.bulletin-brief { margin-left: 0.2in; }
.bulletin-source { font-style: italic; font-size: 10pt; color: #666; margin-top: 0.05in; }
.bulletin-date { text-align: center; font-style: italic; margin-bottom: 0.2in; }
.bulletin-category { background-color: #f5f5f5; padding: 0.05in; margin-top: 0.2in; font-weight: bold; text-transform: uppercase; font-size: 11pt; }
`

const oneTechCSS = `
body { font-family: 'Bookerly', Georgia, serif; font-size: 12pt; line-height: 1.6; }
h1 { font-size: 22pt; margin-bottom: 0.3in; text-align: center; line-height: 1.2; }
h2 { font-size: 18pt; margin-top: 0.3in; margin-bottom: 0.2in; color: #444; }
h3 { font-size: 16pt; margin-top: 0.2in; margin-bottom: 0.1in; }
p { margin: 0.7em 0; text-indent: 0.2in; }
h1 + p, h2 + p, h3 + p, h4 + p, h5 + p, h6 + p { text-indent: 0; }
img { max-width: 95%; height: auto !important; margin: 1em auto; display: block; }
.ot-section { margin: 0.3in 0; padding-bottom: 0.1in; border-bottom: 1px solid #eee; }
.ot-highlight { background-color: #f5f5f5; padding: 0.1in; margin: 0.2in 0; border-left: 3px solid #888; }
.ot-author { text-align: center; font-style: italic; margin-bottom: 0.2in; }
table { width: 95%; margin: 0.2in auto; border-collapse: collapse; }
th, td { padding: 0.1in; border: 1px solid #ddd; }
th { background-color: #f5f5f5; font-weight: bold; }
`

const jeffSelingoCSS = `
body { font-family: 'Bookerly', Georgia, serif; font-size: 12pt; line-height: 1.6; }
h1 { font-size: 22pt; margin-bottom: 0.2in; text-align: center; line-height: 1.2; }
h2 { font-size: 18pt; margin-top: 0.3in; margin-bottom: 0.1in; color: #333; }
h3 { font-size: 16pt; margin-top: 0.2in; margin-bottom: 0.1in; font-weight: normal; font-style: italic; }
p { margin: 0.7em 0; text-indent: 0.2in; text-align: justify; }
h1 + p, h2 + p, h3 + p { text-indent: 0; }
.js-section { margin: 0.3in 0; padding-bottom: 0.1in; }
.js-summary { font-style: italic; margin: 0.2in 0; padding: 0.1in; border-left: 3px solid #888; }
.js-quote { margin: 0.2in 1em; padding-left: 0.5em; border-left: 2px solid #888; font-style: italic; }
.js-quote p { text-indent: 0; }
.js-issue-number { text-align: center; font-style: italic; color: #555; margin-bottom: 0.2in; }
`

const genericCSS = `
body { font-family: 'Bookerly', Georgia, serif; font-size: 12pt; line-height: 1.5; }
h1 { font-size: 22pt; margin-bottom: 0.3in; text-align: center; line-height: 1.2; }
h2 { font-size: 18pt; margin-top: 0.3in; margin-bottom: 0.2in; line-height: 1.2; }
h3 { font-size: 16pt; margin-top: 0.2in; margin-bottom: 0.1in; }
p { margin: 0.8em 0; text-indent: 0.2in; text-align: justify; }
h1 + p, h2 + p, h3 + p, blockquote p, li p { text-indent: 0; }
img { max-width: 95%; height: auto !important; margin: 0.2in auto; display: block; }
a { color: #000; text-decoration: underline; }
blockquote { margin: 0.2in 1em; padding-left: 0.5em; border-left: 2px solid #666; font-style: italic; }
blockquote p { text-indent: 0; }
table { width: 95%; margin: 1em auto; border-collapse: collapse; }
th, td { padding: 0.5em; border: 1px solid #ddd; font-size: 11pt; }
.figure { margin: 1em 0; text-align: center; page-break-inside: avoid; }
.image-caption { font-size: 10pt; color: #666; font-style: italic; text-align: center; margin-top: 0.3em; }
ul, ol { margin: 0.5em 0 0.5em 1em; }
li { margin-bottom: 0.3em; }
`
